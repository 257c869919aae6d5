package domain

import (
	"fmt"

	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
)

// ProcessorSpec is the declared interface of a processor.
type ProcessorSpec struct {
	Name       string
	Help       string
	Inputs     []ProcessorIO
	Outputs    []ProcessorIO
	Parameters []ProcessorParameter
	Attributes []ProcessorAttribute
	Tags       []string
}

type ProcessorIO struct {
	Name string
	Help string
}

type ProcessorParameter struct {
	Name    string
	Help    string
	Type    string
	Default any
	Options []any
	Secret  bool
}

type ProcessorAttribute struct {
	Name  string
	Value any
}

// Parameter returns the parameter spec named as name.
func (p ProcessorSpec) Parameter(name string) (ProcessorParameter, bool) {
	for _, param := range p.Parameters {
		if param.Name == name {
			return param, true
		}
	}
	return ProcessorParameter{}, false
}

func (p ProcessorSpec) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: processor name is empty", domerr.ErrInvalidArgument)
	}
	seen := map[string]struct{}{}
	for _, param := range p.Parameters {
		if param.Name == "" {
			return fmt.Errorf("%w: processor %s has a parameter without name", domerr.ErrInvalidArgument, p.Name)
		}
		if _, ok := seen[param.Name]; ok {
			return fmt.Errorf("%w: processor %s has duplicated parameter %s", domerr.ErrInvalidArgument, p.Name, param.Name)
		}
		seen[param.Name] = struct{}{}
	}
	return nil
}

// ComputeResourceSpec is the processor catalog advertised by a compute resource.
type ComputeResourceSpec struct {
	Apps []AppSpec
}

type AppSpec struct {
	Name       string
	Help       string
	Processors []ProcessorSpec
}

func (s ComputeResourceSpec) Validate() error {
	for _, app := range s.Apps {
		if app.Name == "" {
			return fmt.Errorf("%w: app name is empty", domerr.ErrInvalidArgument)
		}
		for _, p := range app.Processors {
			if err := p.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
