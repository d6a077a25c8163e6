// Package configuration reads the per-folder configuration file and resolves
// it, together with any command-line overrides, into the [Options] of a patch
// run.
package configuration

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys understood in a configuration file.
const (
	KeyPreset        = "METAPATCH_PRESET"
	KeySearch        = "METAPATCH_SEARCH"
	KeyReplace       = "METAPATCH_REPLACE"
	KeyFilter        = "METAPATCH_FILTER"
	KeyExclude       = "METAPATCH_EXCLUDE"
	KeyFailFast      = "METAPATCH_FAIL_FAST"
	KeySkipUnchanged = "METAPATCH_SKIP_UNCHANGED"
	KeyDryRun        = "METAPATCH_DRY_RUN"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Handler is the principal implementation for reading configuration files.
type Handler struct {
	GenericHandler genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(genericHandler genericConfigProvider) *Handler {
	return &Handler{
		GenericHandler: genericHandler,
	}
}

// ReadGeneric reads generic configuration files into a map (map[key]value).
func (c *Handler) ReadGeneric(filenames ...string) (map[string]string, error) {
	envMap, err := c.GenericHandler.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("(config) %w", err)
	}

	return envMap, nil
}

// MapKeyToString returns the value for a key, or an empty string if the key
// does not exist.
func (c *Handler) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}

	return ""
}

// MapKeyToBool returns the value for a key as a boolean. Missing or
// unparseable values return false.
func (c *Handler) MapKeyToBool(envMap map[string]string, key string) bool {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return false
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}

	return boolValue
}

// MapKeyToList returns the comma separated value for a key as a slice, with
// surrounding whitespace and empty elements removed.
func (c *Handler) MapKeyToList(envMap map[string]string, key string) []string {
	value := c.MapKeyToString(envMap, key)
	if value == "" {
		return nil
	}

	var list []string
	for _, elem := range strings.Split(value, ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			list = append(list, elem)
		}
	}

	return list
}
