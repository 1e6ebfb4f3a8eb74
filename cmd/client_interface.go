package cmd

import (
	"context"

	"firestige.xyz/sentinel/pkg/sentinel"
)

// ClientInterface is what the commands need from the capture library.
type ClientInterface interface {
	ListInterfaces(ctx context.Context) ([]sentinel.Interface, error)
	SelectInterface(ifaces []sentinel.Interface) (sentinel.Interface, error)
	Capture(ctx context.Context, count int, opts ...sentinel.Option) ([]sentinel.Record, error)
}

// libraryClient calls pkg/sentinel directly.
type libraryClient struct{}

func (libraryClient) ListInterfaces(ctx context.Context) ([]sentinel.Interface, error) {
	return sentinel.ListInterfaces(ctx)
}

func (libraryClient) SelectInterface(ifaces []sentinel.Interface) (sentinel.Interface, error) {
	return sentinel.SelectInterface(ifaces)
}

func (libraryClient) Capture(ctx context.Context, count int, opts ...sentinel.Option) ([]sentinel.Record, error) {
	return sentinel.Capture(ctx, count, opts...)
}
