package service

import (
	"context"
	"fmt"
	"net/url"
	"testing"
)

func TestPermanent(t *testing.T) {
	err := fmt.Errorf("Permanent error")
	if Temporary(err) {
		t.Fail()
	}
	err = &url.Error{Err: err}
	if Temporary(err) {
		t.Fail()
	}
}

func TestTemporary(t *testing.T) {
	err := MakeTemporary(fmt.Errorf("Temporary error"))
	if !Temporary(err) {
		t.Fail()
	}
	err = fmt.Errorf("Warp: %w", err)
	if !Temporary(err) {
		t.Fail()
	}
	if !Temporary(context.Canceled) {
		t.Fail()
	}
	if !Temporary(context.DeadlineExceeded) {
		t.Fail()
	}
	err = fmt.Errorf("Warp: %w", &url.Error{Err: err})
	if !Temporary(err) {
		t.Fail()
	}
}

func TestFatal(t *testing.T) {
	if Fatal(fmt.Errorf("some error")) {
		t.Fail()
	}
	err := MakeFatal(fmt.Errorf("Fatal error"))
	if !Fatal(err) {
		t.Fail()
	}
	if !Fatal(fmt.Errorf("Warp: %w", err)) {
		t.Fail()
	}
}

func TestMergeErrors(t *testing.T) {
	tmp := MakeTemporary(fmt.Errorf("temporary"))
	fatal := MakeFatal(fmt.Errorf("fatal"))

	if err := MergeErrors(false, nil, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	// priority to success: any nil wins
	if err := MergeErrors(false, tmp, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	// priority to error: fatal wins over temporary
	if err := MergeErrors(true, tmp, fatal); !Fatal(err) {
		t.Errorf("expected a fatal error, got %v", err)
	}
	if err := MergeErrors(true, nil, tmp); !Temporary(err) {
		t.Errorf("expected a temporary error, got %v", err)
	}
}
