package flora_test

import (
	"errors"
	"testing"

	"floradex/internal/flora"
)

func TestTransition(t *testing.T) {
	t.Run("happy path through save", func(t *testing.T) {
		t.Parallel()
		w := flora.NewWorkflow()

		steps := []struct {
			event flora.Event
			want  flora.State
		}{
			{flora.EventSelectImage, flora.StateImageSelected},
			{flora.EventIdentifyStart, flora.StateIdentifying},
			{flora.EventIdentifyDone, flora.StateResultShown},
			{flora.EventSaveStart, flora.StateSaving},
			{flora.EventSaveDone, flora.StateIdle},
		}

		for _, step := range steps {
			if err := w.Apply(step.event); err != nil {
				t.Fatalf("Apply(%s) error = %v", step.event, err)
			}
			if w.State() != step.want {
				t.Fatalf("after %s state = %s, want %s", step.event, w.State(), step.want)
			}
		}
	})

	t.Run("re-selection in result-shown discards the result", func(t *testing.T) {
		t.Parallel()
		got, err := flora.Transition(flora.StateResultShown, flora.EventSelectImage)
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if got != flora.StateImageSelected {
			t.Errorf("state = %s, want image-selected", got)
		}
	})

	t.Run("failed identify returns to image-selected", func(t *testing.T) {
		t.Parallel()
		got, err := flora.Transition(flora.StateIdentifying, flora.EventIdentifyFail)
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if got != flora.StateImageSelected {
			t.Errorf("state = %s, want image-selected", got)
		}
	})

	t.Run("failed save returns to result-shown for a manual re-trigger", func(t *testing.T) {
		t.Parallel()
		got, err := flora.Transition(flora.StateSaving, flora.EventSaveFail)
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if got != flora.StateResultShown {
			t.Errorf("state = %s, want result-shown", got)
		}
	})

	t.Run("save is only valid in result-shown", func(t *testing.T) {
		t.Parallel()
		for _, s := range []flora.State{
			flora.StateIdle, flora.StateImageSelected, flora.StateIdentifying, flora.StateSaving,
		} {
			_, err := flora.Transition(s, flora.EventSaveStart)
			var wfErr *flora.WorkflowError
			if !errors.As(err, &wfErr) {
				t.Errorf("Transition(%s, save-start) error = %v, want WorkflowError", s, err)
			}
		}
	})

	t.Run("discard is rejected mid-flight", func(t *testing.T) {
		t.Parallel()
		for _, s := range []flora.State{flora.StateIdentifying, flora.StateSaving} {
			_, err := flora.Transition(s, flora.EventDiscard)
			var wfErr *flora.WorkflowError
			if !errors.As(err, &wfErr) {
				t.Errorf("Transition(%s, discard) error = %v, want WorkflowError", s, err)
			}
		}
	})

	t.Run("invalid transition keeps the workflow state", func(t *testing.T) {
		t.Parallel()
		w := flora.NewWorkflow()
		if err := w.Apply(flora.EventSaveDone); err == nil {
			t.Fatal("Apply(save-done) in idle should fail")
		}
		if w.State() != flora.StateIdle {
			t.Errorf("state = %s, want idle", w.State())
		}
	})

	t.Run("in-flight covers identifying and saving only", func(t *testing.T) {
		t.Parallel()
		w := flora.NewWorkflow()
		if w.InFlight() {
			t.Error("idle workflow reports in-flight")
		}
		w.Apply(flora.EventSelectImage)
		w.Apply(flora.EventIdentifyStart)
		if !w.InFlight() {
			t.Error("identifying workflow should report in-flight")
		}
	})
}
