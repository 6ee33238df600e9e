// Package awsauth handles the aws-auth identity-mapping document that binds
// IAM roles to Kubernetes groups and usernames.
//
// The document lives in the kube-system/aws-auth ConfigMap under the
// mapRoles key and is consumed by the AWS IAM authenticator. It is a shared
// external resource: this package only encodes and transforms the document,
// it provides no coordination between concurrent writers.
package awsauth

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// RoleMapping binds one IAM role to cluster-side identities.
type RoleMapping struct {
	RoleARN  string   `json:"rolearn"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// Parse decodes a mapRoles document. An empty document yields no mappings.
func Parse(doc string) ([]RoleMapping, error) {
	if doc == "" {
		return nil, nil
	}
	var mappings []RoleMapping
	if err := yaml.Unmarshal([]byte(doc), &mappings); err != nil {
		return nil, fmt.Errorf("failed to parse role mappings: %w", err)
	}
	return mappings, nil
}

// Render encodes mappings back into a mapRoles document.
func Render(mappings []RoleMapping) (string, error) {
	data, err := yaml.Marshal(mappings)
	if err != nil {
		return "", fmt.Errorf("failed to render role mappings: %w", err)
	}
	return string(data), nil
}

// Append returns mappings with the entry added at the end. The input slice
// is not modified.
func Append(mappings []RoleMapping, mapping RoleMapping) []RoleMapping {
	out := make([]RoleMapping, 0, len(mappings)+1)
	out = append(out, mappings...)
	return append(out, mapping)
}

// RemoveByRoleARN returns mappings without any entry whose rolearn equals
// arn. Removal is keyed, not positional: the document may have gained or
// lost unrelated entries since the matching one was appended, and those are
// preserved in order.
func RemoveByRoleARN(mappings []RoleMapping, arn string) []RoleMapping {
	kept := make([]RoleMapping, 0, len(mappings))
	for _, mapping := range mappings {
		if mapping.RoleARN == arn {
			continue
		}
		kept = append(kept, mapping)
	}
	return kept
}
