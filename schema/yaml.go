package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Schema   `yaml:",inline"`
	Mappings []Mapping `yaml:"mappings,omitempty"`
}

type file struct {
	Schemas []fileSchema `yaml:"schemas"`
}

// LoadYAML reads schema definitions of the form
//
//	schemas:
//	  - name: ex
//	    namespace: http://example.org/
//	    mappings:
//	      - local: Student
//	        target: Student
//	        kind: label
//
// and adds them to the registry. Schemas that already exist with the same
// namespace are extended.
func (r *Registry) LoadYAML(rd io.Reader) ([]ID, error) {
	var f file
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("cannot decode schema file: %v", err)
	}
	ids := make([]ID, 0, len(f.Schemas))
	for _, s := range f.Schemas {
		if s.Name == "" {
			return ids, fmt.Errorf("schema without a name")
		}
		id, err := r.AddSchema(s.Name, s.Namespace)
		if err != nil {
			return ids, err
		}
		for _, m := range s.Mappings {
			if err = r.AddMapping(id, m.Namespace, m.LocalName, m.Target, m.Kind); err != nil {
				return ids, err
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// WriteYAML writes all schemas in the format read by LoadYAML.
func (r *Registry) WriteYAML(w io.Writer) error {
	var f file
	for _, s := range r.ListSchemas("") {
		ms, err := r.ListMappings(s.ID, "")
		if err != nil {
			return err
		}
		for i := range ms {
			if ms[i].Namespace == s.Namespace {
				ms[i].Namespace = ""
			}
		}
		f.Schemas = append(f.Schemas, fileSchema{Schema: s, Mappings: ms})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}
