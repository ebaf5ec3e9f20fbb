package core

import (
	"context"
	"fmt"
)

type Step struct {
	Name    string
	State   State
	Execute func(ctx context.Context, attempt *Attempt) error
}

func NewStep(name string, state State, execute func(ctx context.Context, attempt *Attempt) error) *Step {
	return &Step{
		Name:    name,
		State:   state,
		Execute: execute,
	}
}

type Flow struct {
	Name  string
	Steps []*Step
}

func NewFlow(name string, steps ...*Step) *Flow {
	return &Flow{Name: name, Steps: steps}
}

// StepError reports the step, and the state it ran in, that stopped a flow.
type StepError struct {
	Step  string
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed in state %s: %v", e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Engine struct {
	machine *Machine
}

func NewEngine(machine *Machine) *Engine {
	return &Engine{machine: machine}
}

// Run moves the machine into each step's state before executing it. It stops at
// the first failing step and leaves the machine in that step's state.
func (e *Engine) Run(ctx context.Context, flow *Flow, attempt *Attempt) error {
	for _, step := range flow.Steps {
		if e.machine.State() != step.State {
			if err := e.machine.Transition(step.State); err != nil {
				return &StepError{Step: step.Name, State: e.machine.State(), Err: err}
			}
		}
		if err := step.Execute(ctx, attempt); err != nil {
			return &StepError{Step: step.Name, State: step.State, Err: err}
		}
	}
	return nil
}
