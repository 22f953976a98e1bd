package public

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddr(t *testing.T) {
	host, _ := os.Hostname()

	res, err := SetAddr(":7070")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("http://%s:7070", host), res)

	res, err = SetAddr("0.0.0.0:7070")
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("http://%s:7070", host), res)

	res, err = SetAddr("example.com:7070")
	require.NoError(t, err)
	require.Equal(t, "http://example.com:7070", res)
}

func TestListenerDerivesAddr(t *testing.T) {
	Addr = ""

	res, err := SetListener("example.org:7070")
	require.NoError(t, err)
	require.Equal(t, "example.org:7070", res)
	require.Equal(t, "http://example.org:7070", Addr)
}
