package domain

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// Schema definitions checked by Schema.Check.
const (
	DefIdentity     = "#Identity"
	DefPatients     = "#Patients"
	DefDoctors      = "#Doctors"
	DefAppointments = "#Appointments"
)

// Schema validates persisted JSON against the embedded CUE definitions.
// A CUE context is not safe for concurrent use, so checks are serialized.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	root cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{ctx: ctx, root: root}, nil
}

// Check reports whether data, a JSON document, satisfies the named definition.
func (s *Schema) Check(def string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.root.LookupPath(cue.ParsePath(def))
	if !d.Exists() {
		return fmt.Errorf("schema: unknown definition %s", def)
	}
	v := s.ctx.CompileBytes(data, cue.Filename(def+".json"))
	if err := v.Err(); err != nil {
		return &SchemaError{Def: def, Detail: errors.Details(err, nil)}
	}
	if err := d.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Def: def, Detail: errors.Details(err, nil)}
	}
	return nil
}

// SchemaError reports persisted data that does not match its definition.
type SchemaError struct {
	Def    string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed %s data: %s", e.Def, e.Detail)
}
