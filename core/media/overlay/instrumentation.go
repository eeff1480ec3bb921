package overlay

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/alert-relay/core/media/overlay"

var logger = otelslog.NewLogger(scopeName)
