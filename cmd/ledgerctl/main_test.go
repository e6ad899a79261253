package main

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountFlag(t *testing.T) {
	var a amountFlag
	require.NoError(t, a.Set("12.50"))
	assert.True(t, a.set)
	assert.Equal(t, "12.5", a.String())

	assert.Error(t, a.Set("twelve"))
}

func TestParse_RequiredFlags(t *testing.T) {
	fs := flag.NewFlagSet("deposit", flag.ContinueOnError)
	fs.String("account", "", "")
	var amount amountFlag
	fs.Var(&amount, "amount", "")

	err := parse(fs, []string{"-account", "acc-1"}, "account", "amount")
	assert.ErrorContains(t, err, "-amount is required")

	fs = flag.NewFlagSet("deposit", flag.ContinueOnError)
	fs.String("account", "", "")
	fs.Var(&amount, "amount", "")
	assert.NoError(t, parse(fs, []string{"-account", "acc-1", "-amount", "5"}, "account", "amount"))
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorContains(t, run(nil, &out), "missing command")
	assert.ErrorContains(t, run([]string{"audit"}, &out), "unknown command")
}
