package config

import (
	"errors"
	"fmt"

	"github.com/0xalexb/hjarta-config/config/mapper"
)

var (
	// ErrNotStruct is returned when the target type is not a struct.
	ErrNotStruct = mapper.ErrNotStruct
	// ErrUnknownField is returned when a field mapping or a field rule names
	// a path that is not a field.
	ErrUnknownField = mapper.ErrUnknownField
	// ErrEnvWithFile is returned when the env loader is given a file.
	ErrEnvWithFile = errors.New("env loader reads environment variables and does not use files, " +
		"remove File or use the envfile loader")
	// ErrUnknownKind is returned for a loader name that does not exist.
	ErrUnknownKind = errors.New("unknown loader")
	// ErrUnknownExtension is matched by every ExtensionError.
	ErrUnknownExtension = errors.New("unknown file extension")
	// ErrNamingMismatch is returned when merged sources name fields differently.
	ErrNamingMismatch = errors.New("merged sources must share NameStyle and FieldMapping")
	// ErrNoSources is returned when a merge has no sources.
	ErrNoSources = errors.New("merge has no sources")
)

// ExtensionError reports a file whose loader cannot be derived from its
// extension.
type ExtensionError struct {
	Extension string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("Cannot determine loader type for extension '%s'. "+
		"Please specify loader explicitly or use a supported extension: %s", e.Extension, supportedExtensions)
}

// Is matches ErrUnknownExtension.
func (e *ExtensionError) Is(target error) bool {
	return target == ErrUnknownExtension
}
