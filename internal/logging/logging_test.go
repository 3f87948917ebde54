package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	defer Configure("info", "development")

	Configure("debug", "production")
	assert.Equal(t, logrus.DebugLevel, Logger().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Logger().Formatter)

	Configure("loud", "development")
	assert.Equal(t, logrus.DebugLevel, Logger().GetLevel(), "unknown level keeps the previous one")
	assert.IsType(t, &logrus.TextFormatter{}, Logger().Formatter)
}

func TestFromContext_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	out := Logger().Out
	Logger().SetOutput(&buf)
	defer Logger().SetOutput(out)

	ctx := WithRequestID(context.Background(), "rid-42")
	assert.Equal(t, "rid-42", RequestID(ctx))

	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=rid-42")

	assert.Empty(t, RequestID(context.Background()))
	_, tagged := FromContext(context.Background()).Data["request_id"]
	assert.False(t, tagged)
}
