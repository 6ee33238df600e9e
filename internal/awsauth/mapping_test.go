package awsauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	mappings, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	_, err := Parse("- rolearn: [broken")
	require.Error(t, err)
}

func TestParseRender_RoundTrip(t *testing.T) {
	t.Parallel()
	in := []RoleMapping{
		{RoleARN: "arn:admin", Username: "team-a-admin-test", Groups: []string{"team-a-admin-test"}},
		{RoleARN: "arn:deploy", Username: "team-a-deployments-test", Groups: []string{"team-a-deployments-test"}},
	}

	doc, err := Render(in)
	require.NoError(t, err)
	assert.Contains(t, doc, "rolearn: arn:admin")
	assert.Contains(t, doc, "username: team-a-admin-test")

	out, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAppend_DoesNotModifyInput(t *testing.T) {
	t.Parallel()
	in := []RoleMapping{{RoleARN: "arn:first"}}

	out := Append(in, RoleMapping{RoleARN: "arn:second"})

	require.Len(t, out, 2)
	assert.Equal(t, "arn:second", out[1].RoleARN)
	assert.Len(t, in, 1)
}

func TestRemoveByRoleARN(t *testing.T) {
	t.Parallel()
	mappings := []RoleMapping{
		{RoleARN: "arn:other-1", Username: "u1"},
		{RoleARN: "arn:target", Username: "u2"},
		{RoleARN: "arn:other-2", Username: "u3"},
	}

	kept := RemoveByRoleARN(mappings, "arn:target")

	// Exactly the matching entry is removed, the rest keep their order.
	require.Len(t, kept, 2)
	assert.Equal(t, "arn:other-1", kept[0].RoleARN)
	assert.Equal(t, "arn:other-2", kept[1].RoleARN)
}

func TestRemoveByRoleARN_NoMatch(t *testing.T) {
	t.Parallel()
	mappings := []RoleMapping{{RoleARN: "arn:keep"}}

	kept := RemoveByRoleARN(mappings, "arn:absent")

	assert.Equal(t, mappings, kept)
}
