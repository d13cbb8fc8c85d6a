package workflow

import (
	"context"
	"fmt"

	"msktravels/pkg/model"
)

// flowContext is the scratch state one flow run passes between its steps.
type flowContext struct {
	raw      model.RawCriteria
	criteria *model.SearchCriteria
	offers   []model.VehicleOffer

	session   *model.Session
	offer     model.VehicleOffer
	pkg       *model.Package
	intent    *model.BookingIntent
	receipt   *model.Receipt
	submitted bool
}

type Step struct {
	Name    string
	Execute func(ctx context.Context, fc *flowContext) error
}

func NewStep(name string, execute func(ctx context.Context, fc *flowContext) error) Step {
	return Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow struct {
	name  string
	steps []Step
}

func NewFlow(name string, steps ...Step) Flow {
	return Flow{name: name, steps: steps}
}

func (f Flow) Name() string {
	return f.name
}

func (f Flow) Steps() []Step {
	return f.steps
}

// Engine runs named flows step by step; the first failing step ends the run.
type Engine struct {
	flows map[string]Flow
}

func NewEngine(flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m}
}

func (e *Engine) Run(ctx context.Context, flowName string, fc *flowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %v", flowName)
	}
	for _, step := range f.Steps() {
		if err := step.Execute(ctx, fc); err != nil {
			return fmt.Errorf("%s step failed: %w", step.Name, err)
		}
	}
	return nil
}
