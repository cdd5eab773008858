package modular

import "errors"

// ErrUnknownModuleKind is returned when a patch or registry lookup references
// an unregistered module kind. Fatal to patch load.
var ErrUnknownModuleKind = errors.New("unknown module kind")

// ErrPatchGraph is returned for structurally malformed patches: connections
// referencing absent modules or ports, duplicate module IDs, or an invalid
// polyphony count. Fatal to patch load.
var ErrPatchGraph = errors.New("invalid patch graph")

// ErrUnknownModule is returned by parameter updates naming a module ID not
// present in the loaded patch. The update is a no-op.
var ErrUnknownModule = errors.New("unknown module")

// ErrUnknownParameter is returned by parameter updates naming a parameter the
// module's descriptor does not declare. The update is a no-op.
var ErrUnknownParameter = errors.New("unknown parameter")

// ErrNoPatch is returned by control calls that require a loaded patch.
var ErrNoPatch = errors.New("no patch loaded")
