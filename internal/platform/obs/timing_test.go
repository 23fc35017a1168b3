package obs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	id := RequestID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, RequestID(WithRequestID(ctx, "")))
	assert.Equal(t, "given", RequestID(WithRequestID(ctx, "given")))
	assert.Empty(t, RequestID(context.Background()))
}

func TestTimeLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	prev := logrus.StandardLogger().Out
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(prev)

	func() (err error) {
		defer Time(WithRequestID(context.Background(), "r1"), "test.op")(&err)
		return errors.New("boom")
	}()

	out := buf.String()
	assert.Contains(t, out, "op=test.op")
	assert.Contains(t, out, "req_id=r1")
	assert.Contains(t, out, "boom")
}
