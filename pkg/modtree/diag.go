package modtree

import "fmt"

// DiagnosticKind classifies a non-fatal condition met while building or
// transforming a forest.
type DiagnosticKind int

const (
	// DiagDuplicateModule: a second descriptor was inserted under a name
	// that already had one. The first descriptor is kept.
	DiagDuplicateModule DiagnosticKind = iota
	// DiagInvalidName: a descriptor with an empty name was offered.
	DiagInvalidName
	// DiagFoldWithoutTarget: a sub-tree was folded into a node that has no
	// descriptor. Its imports are dropped.
	DiagFoldWithoutTarget
	// DiagMissingDescriptor: an operation named a module that has no
	// descriptor. The operation is a no-op for that name.
	DiagMissingDescriptor
	// DiagDuplicateGraphNode: the same name exists in both trees. Only the
	// first projected node is kept.
	DiagDuplicateGraphNode
)

var diagnosticKindNames = [...]string{
	DiagDuplicateModule:    "duplicate-module",
	DiagInvalidName:        "invalid-name",
	DiagFoldWithoutTarget:  "fold-without-target",
	DiagMissingDescriptor:  "missing-descriptor",
	DiagDuplicateGraphNode: "duplicate-graph-node",
}

func (k DiagnosticKind) String() string {
	if int(k) < len(diagnosticKindNames) {
		return diagnosticKindNames[k]
	}
	return fmt.Sprintf("diagnostic(%d)", int(k))
}

// Diagnostic is a non-fatal condition recorded on a [Forest].
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Module  string         `json:"module"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Kind, d.Module, d.Message)
}
