package grid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadParams reads a ParameterSet from a YAML file of the form:
//
//	parameters:
//	  - name: N
//	    values: [10, 20]
//	  - name: p
//	    values: [0.1, 0.5]
//	  - name: n
//	    values: [100]
//
// Parameter order in the file is preserved and fixes the table's column and
// row ordering.
func LoadParams(path string) (ParameterSet, error) {
	var ps ParameterSet

	data, err := os.ReadFile(path)
	if err != nil {
		return ps, fmt.Errorf("reading parameter file: %w", err)
	}

	if err := yaml.Unmarshal(data, &ps); err != nil {
		return ps, fmt.Errorf("parsing parameter file: %w", err)
	}

	if err := ps.Validate(); err != nil {
		return ps, fmt.Errorf("invalid parameter file %s: %w", path, err)
	}

	return ps, nil
}
