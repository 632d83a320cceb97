package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDBEmptyDSN(t *testing.T) {
	_, _, err := InitDB("")
	require.Error(t, err)
}
