package langdetect

import (
	"errors"
	"testing"
)

func TestDetect_English(t *testing.T) {
	d := NewStopwordDetector()

	tag, err := d.Detect("the weather is lovely and the coffee was great")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if tag != "en" {
		t.Fatalf("expected en, got %q", tag)
	}
}

func TestDetect_Spanish(t *testing.T) {
	d := NewStopwordDetector()

	tag, err := d.Detect("la casa es grande y el perro duerme en la cocina")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if tag != "es" {
		t.Fatalf("expected es, got %q", tag)
	}
}

func TestDetect_German(t *testing.T) {
	d := NewStopwordDetector()

	tag, err := d.Detect("ich bin nicht sicher ob das eine gute Idee ist und sie auch nicht")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if tag != "de" {
		t.Fatalf("expected de, got %q", tag)
	}
}

func TestDetect_ShortInputIndeterminate(t *testing.T) {
	d := NewStopwordDetector()

	if _, err := d.Detect("hello"); !errors.Is(err, ErrIndeterminate) {
		t.Fatalf("expected ErrIndeterminate for one token, got %v", err)
	}
	if _, err := d.Detect(""); !errors.Is(err, ErrIndeterminate) {
		t.Fatalf("expected ErrIndeterminate for empty input, got %v", err)
	}
}

func TestDetect_NoStopwordHitsIndeterminate(t *testing.T) {
	d := NewStopwordDetector()

	if _, err := d.Detect("zyzzyva quokka wombat platypus"); !errors.Is(err, ErrIndeterminate) {
		t.Fatalf("expected ErrIndeterminate without stopword hits, got %v", err)
	}
}

func TestDetect_NumbersAndPunctuationIgnored(t *testing.T) {
	d := NewStopwordDetector()

	tag, err := d.Detect("42 the answer, and 7 is the other!")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if tag != "en" {
		t.Fatalf("expected en, got %q", tag)
	}
}
