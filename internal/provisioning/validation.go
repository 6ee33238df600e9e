package provisioning

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

// ValidationError reports a malformed input before any remote effect has
// happened; no unwind is needed for it.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// reservedNamespaces are cluster-owned namespaces this tool refuses to manage.
var reservedNamespaces = map[string]struct{}{
	"default":         {},
	"kube-system":     {},
	"kube-public":     {},
	"kube-node-lease": {},
}

// ValidateNamespaceName checks that a namespace name is a valid DNS-1123
// label and not a reserved cluster namespace. The same name feeds every
// derived resource name, so it is checked once, up front.
func ValidateNamespaceName(name string) error {
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return &ValidationError{Field: "namespace", Message: strings.Join(errs, "; ")}
	}
	if _, reserved := reservedNamespaces[name]; reserved {
		return &ValidationError{Field: "namespace", Message: fmt.Sprintf("%q is a reserved namespace", name)}
	}
	return nil
}
