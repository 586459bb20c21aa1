package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRecorder(t *testing.T) {
	var p Publisher = &Recorder{}
	require.NoError(t, p.Publish(SubjectPollCreated, PollCreated{PollID: 1, Scope: "all"}))
	require.NoError(t, p.Publish(SubjectEventReviewed, EventReviewed{EventID: 2}))

	rec := p.(*Recorder)
	assert.Equal(t, []string{SubjectPollCreated, SubjectEventReviewed}, rec.Subjects())
	assert.Equal(t, PollCreated{PollID: 1, Scope: "all"}, rec.Messages()[0].Payload)
}

func TestNATSPublisher(t *testing.T) {
	if os.Getenv("CLUBHUB_INTEGRATION") != "1" {
		t.Skip("set CLUBHUB_INTEGRATION=1 to run NATS integration tests")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)
	url := fmt.Sprintf("nats://%s:%s", host, port.Port())

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("clubhub.event.reviewed", received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := NewNATSPublisher(url, "clubhub", zerolog.Nop())
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(SubjectEventReviewed, EventReviewed{EventID: 7, ClubID: 3, Status: "approved", ReviewedBy: 1}))

	select {
	case msg := <-received:
		var got EventReviewed
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, EventReviewed{EventID: 7, ClubID: 3, Status: "approved", ReviewedBy: 1}, got)
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
