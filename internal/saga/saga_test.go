package saga

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_Add_IgnoresNilUndo(t *testing.T) {
	t.Parallel()
	s := NewStack()

	s.Add(Compensation{Name: "noop"})

	assert.Zero(t, s.Len())
}

func TestStack_Unwind_ReverseOrder(t *testing.T) {
	t.Parallel()
	s := NewStack()
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		s.Add(Compensation{Name: name, Undo: func(_ context.Context) error {
			order = append(order, name)
			return nil
		}})
	}

	err := s.Unwind(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestStack_Unwind_ContinuesPastFailures(t *testing.T) {
	t.Parallel()
	s := NewStack()
	var order []string
	s.Add(Compensation{Name: "ok-1", Undo: func(_ context.Context) error {
		order = append(order, "ok-1")
		return nil
	}})
	s.Add(Compensation{Name: "broken", Undo: func(_ context.Context) error {
		order = append(order, "broken")
		return errors.New("resource locked")
	}})
	s.Add(Compensation{Name: "ok-2", Undo: func(_ context.Context) error {
		order = append(order, "ok-2")
		return nil
	}})

	err := s.Unwind(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `compensation "broken"`)
	assert.Contains(t, err.Error(), "resource locked")
	// All three ran despite the middle one failing.
	assert.Equal(t, []string{"ok-2", "broken", "ok-1"}, order)
}

func TestStack_Unwind_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, NewStack().Unwind(context.Background()))
}

func TestStack_Run_Success(t *testing.T) {
	t.Parallel()
	s := NewStack()
	var executed []string

	err := s.Run(context.Background(),
		Step{Name: "stack", Run: func(_ context.Context) error {
			executed = append(executed, "stack")
			s.Add(Compensation{Name: "delete-stack", Undo: func(_ context.Context) error { return nil }})
			return nil
		}},
		Step{Name: "namespace", Run: func(_ context.Context) error {
			executed = append(executed, "namespace")
			s.Add(Compensation{Name: "delete-namespace", Undo: func(_ context.Context) error { return nil }})
			return nil
		}},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"stack", "namespace"}, executed)
	assert.Equal(t, 2, s.Len())
}

// For N committed steps followed by a failure on step k, exactly k-1
// compensations run, in reverse registration order, and the step failure is
// what the caller sees.
func TestStack_Run_FailureUnwindsCommittedSteps(t *testing.T) {
	t.Parallel()
	const n = 5
	for k := 1; k <= n; k++ {
		k := k
		t.Run(fmt.Sprintf("fail-at-%d", k), func(t *testing.T) {
			t.Parallel()
			s := NewStack()
			var undone []int
			boom := errors.New("remote call failed")

			var steps []Step
			for i := 1; i <= n; i++ {
				i := i
				steps = append(steps, Step{
					Name: fmt.Sprintf("step-%d", i),
					Run: func(_ context.Context) error {
						if i == k {
							return boom
						}
						s.Add(Compensation{Name: fmt.Sprintf("undo-%d", i), Undo: func(_ context.Context) error {
							undone = append(undone, i)
							return nil
						}})
						return nil
					},
				})
			}

			err := s.Run(context.Background(), steps...)

			require.Error(t, err)
			require.ErrorIs(t, err, boom)

			var abort *AbortError
			require.ErrorAs(t, err, &abort)
			assert.Equal(t, fmt.Sprintf("step-%d", k), abort.Step)
			assert.NoError(t, abort.Unwind)

			want := make([]int, 0, k-1)
			for i := k - 1; i >= 1; i-- {
				want = append(want, i)
			}
			if len(want) == 0 {
				assert.Empty(t, undone)
			} else {
				assert.Equal(t, want, undone)
			}
		})
	}
}

func TestStack_Run_UnwindFailureDoesNotMaskCause(t *testing.T) {
	t.Parallel()
	s := NewStack()
	boom := errors.New("role binding rejected")

	err := s.Run(context.Background(),
		Step{Name: "role", Run: func(_ context.Context) error {
			s.Add(Compensation{Name: "delete-role", Undo: func(_ context.Context) error {
				return errors.New("role already gone")
			}})
			return nil
		}},
		Step{Name: "role-binding", Run: func(_ context.Context) error { return boom }},
	)

	require.Error(t, err)
	// Primary cause survives errors.Is despite the failed compensation.
	require.ErrorIs(t, err, boom)

	var abort *AbortError
	require.ErrorAs(t, err, &abort)
	require.Error(t, abort.Unwind)
	assert.Contains(t, abort.Unwind.Error(), "role already gone")
	assert.Contains(t, err.Error(), "role binding rejected")
	assert.Contains(t, err.Error(), "unwind was incomplete")
}

func TestStack_Run_CancellationTriggersUnwind(t *testing.T) {
	t.Parallel()
	s := NewStack()
	var undone bool

	ctx, cancel := context.WithCancel(context.Background())

	err := s.Run(ctx,
		Step{Name: "stack", Run: func(_ context.Context) error {
			s.Add(Compensation{Name: "delete-stack", Undo: func(_ context.Context) error {
				undone = true
				return nil
			}})
			cancel()
			return nil
		}},
		Step{Name: "namespace", Run: func(_ context.Context) error {
			t.Fatal("step ran after cancellation")
			return nil
		}},
	)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, undone, "compensation should run even though the request context is cancelled")
}

func TestStack_SharedAcrossNestedRoutines(t *testing.T) {
	t.Parallel()
	s := NewStack()
	var undone []string

	record := func(name string) Compensation {
		return Compensation{Name: name, Undo: func(_ context.Context) error {
			undone = append(undone, name)
			return nil
		}}
	}

	// Two sub-routines appending to the same stack; the second fails midway.
	sub := func(prefix string, fail bool) Step {
		return Step{Name: prefix, Run: func(_ context.Context) error {
			s.Add(record(prefix + "/role"))
			if fail {
				return errors.New("binding create failed")
			}
			s.Add(record(prefix + "/binding"))
			s.Add(record(prefix + "/mapping"))
			return nil
		}}
	}

	err := s.Run(context.Background(), sub("admin", false), sub("deployments", true))

	require.Error(t, err)
	// Global chronological reverse order across both sub-routines.
	assert.Equal(t, []string{
		"deployments/role",
		"admin/mapping",
		"admin/binding",
		"admin/role",
	}, undone)
}
