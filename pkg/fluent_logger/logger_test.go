package fluentlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_RequiresPrefixAndHost(t *testing.T) {
	_, err := NewClient(Config{Host: "127.0.0.1"})
	assert.Error(t, err)

	_, err = NewClient(Config{TagPrefix: "real-estate-web"})
	assert.Error(t, err)
}

func TestNewClient_AsyncDoesNotDial(t *testing.T) {
	client, err := NewClient(Config{Host: "127.0.0.1", Port: 1, TagPrefix: "test", Async: true})
	if assert.NoError(t, err) {
		_ = client.Close()
	}
}
