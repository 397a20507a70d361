package callbacks

import "testing"

func plateauStep(t *testing.T, s *ReduceLROnPlateau, epoch int, metric float64) {
	t.Helper()

	stop, err := s.OnEpochEnd(&Context{Epoch: epoch, Logs: Logs{"val_loss": metric}})
	if err != nil {
		t.Fatalf("epoch %d: unexpected error: %v", epoch, err)
	}
	if stop {
		t.Fatalf("epoch %d: plateau hook should never stop training", epoch)
	}
}

func TestReduceLROnPlateau(t *testing.T) {
	s := NewReduceLROnPlateau("val_loss", 0.1, 0.5, 2, 0.01, ModeMin)

	plateauStep(t, s, 1, 1.0) // baseline
	if s.LR() != 0.1 {
		t.Errorf("baseline: expected LR 0.1, got %f", s.LR())
	}

	plateauStep(t, s, 2, 0.98) // improvement
	if s.LR() != 0.1 {
		t.Errorf("after improvement: expected LR 0.1, got %f", s.LR())
	}

	plateauStep(t, s, 3, 0.99) // no improvement
	if s.LR() != 0.1 {
		t.Errorf("first bad epoch: expected LR 0.1, got %f", s.LR())
	}

	plateauStep(t, s, 4, 0.99) // no improvement, patience reached
	if s.LR() != 0.05 {
		t.Errorf("second bad epoch: expected LR 0.05, got %f", s.LR())
	}
}

func TestReduceLROnPlateauMaxMode(t *testing.T) {
	s := NewReduceLROnPlateau("val_accuracy", 0.1, 0.5, 1, 0, ModeMax)

	step := func(epoch int, acc float64) {
		if _, err := s.OnEpochEnd(&Context{Epoch: epoch, Logs: Logs{"val_accuracy": acc}}); err != nil {
			t.Fatalf("epoch %d: unexpected error: %v", epoch, err)
		}
	}

	step(1, 0.8) // baseline
	step(2, 0.9) // improvement
	if s.LR() != 0.1 {
		t.Errorf("after improvement: expected LR 0.1, got %f", s.LR())
	}

	step(3, 0.85) // worse, patience 1 reached
	if s.LR() != 0.05 {
		t.Errorf("after plateau: expected LR 0.05, got %f", s.LR())
	}
}

func TestReduceLROnPlateauMissingMetric(t *testing.T) {
	s := NewReduceLROnPlateau("val_loss", 0.1, 0.5, 1, 0, ModeMin)

	plateauStep(t, s, 1, 1.0)

	// A missing metric leaves the plateau state untouched.
	if _, err := s.OnEpochEnd(&Context{Epoch: 2, Logs: Logs{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LR() != 0.1 {
		t.Errorf("missing metric: expected LR 0.1, got %f", s.LR())
	}
}

func TestReduceLROnPlateauDefaults(t *testing.T) {
	s := NewReduceLROnPlateau("", 0.1, 2.0, 0, -1, "upwards")

	if s.Factor != 0.1 {
		t.Errorf("expected default factor 0.1, got %f", s.Factor)
	}
	if s.Patience != 10 {
		t.Errorf("expected default patience 10, got %d", s.Patience)
	}
	if s.Threshold != 1e-4 {
		t.Errorf("expected default threshold 1e-4, got %f", s.Threshold)
	}
	if s.Mode != ModeMin {
		t.Errorf("expected default mode min, got %s", s.Mode)
	}
	if s.monitor != "val_loss" {
		t.Errorf("expected default monitor val_loss, got %s", s.monitor)
	}
}
