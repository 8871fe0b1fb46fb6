// Package main is the entrypoint for the cardsense command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cardsense/cardsense/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := execute(ctx, newRootCmd(a), a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// apiError reports a failed API call with the message the client produced, unchanged
type apiError struct {
	detail *client.ErrorDetail
}

func (e *apiError) Error() string {
	return e.detail.Message
}

func (e *apiError) Unwrap() error {
	return e.detail
}

// check converts a failed response into an error for cobra
func check[T any](res client.Response[T]) error {
	if res.Success {
		return nil
	}
	if res.Error == nil {
		return errors.New("request failed")
	}
	return &apiError{detail: res.Error}
}
