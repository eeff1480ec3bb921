package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const scopeName = "github.com/koscakluka/alert-relay/cmd/alertrelay"

var logger = otelslog.NewLogger(scopeName)

// setupLogging routes every package logger to w. The returned function
// flushes and shuts the provider down.
func setupLogging(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdoutlog.New(stdoutlog.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)

	return provider.Shutdown, nil
}
