package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/apperror"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00.000", formatTimestamp(0))
	assert.Equal(t, "1:05.250", formatTimestamp(65.25))
	assert.Equal(t, "1:00:00.001", formatTimestamp(3600.001))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "猫が好き", truncate("猫が好き", 4))
	assert.Equal(t, "猫が…", truncate("猫が好き", 3))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Lemma", "Cards"}, [][]string{{"猫", "2"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "LEMMA")
	assert.Contains(t, out, "猫")
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, apperror.New(apperror.ErrNoPairsFound, "no pairs"))
	assert.Contains(t, buf.String(), "Error: ")
	assert.Contains(t, buf.String(), "Hint: No video matched a subtitle")

	buf.Reset()
	printError(&buf, errors.New("plain"))
	assert.Equal(t, "Error: plain\n", buf.String())
}
