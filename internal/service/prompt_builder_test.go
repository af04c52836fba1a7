package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kql-assistant-backend/internal/service"
)

func TestBuildPrompt_EmbedsQuestionAndSchema(t *testing.T) {
	questions := []string{
		"show top 10 computers by CPU usage",
		"which computers missed a heartbeat today?",
		"count errors with 100% certainty %s %d",
		"  leading and trailing spaces  ",
		"多语言 question",
	}

	for _, q := range questions {
		t.Run(q, func(t *testing.T) {
			prompt, err := service.BuildPrompt(q)
			require.NoError(t, err)
			assert.Contains(t, prompt, q)
			assert.Contains(t, prompt, service.SchemaDescription)
		})
	}
}

func TestBuildPrompt_Structure(t *testing.T) {
	prompt, err := service.BuildPrompt("show top 10 computers by CPU usage")
	require.NoError(t, err)

	assert.Contains(t, prompt, "generate only one query (no additional explanation")
	assert.Contains(t, prompt, "for the following question: show top 10 computers by CPU usage.")
	for _, table := range []string{"Event", "Heartbeat", "Perf"} {
		assert.Contains(t, prompt, "table name is "+table)
	}

	directive := strings.Index(prompt, "generate only one query")
	schema := strings.Index(prompt, service.SchemaDescription)
	cue := strings.Index(prompt, "Some of the sample queries")
	assert.True(t, directive < schema && schema < cue, "directive, schema and cue must appear in order")
}

func TestBuildPrompt_EmptyQuestion(t *testing.T) {
	prompt, err := service.BuildPrompt("")
	assert.Empty(t, prompt)
	assert.ErrorIs(t, err, service.ErrEmptyQuestion)
	assert.True(t, service.IsInputError(err))
}

func TestSchemaDescription_ListsEveryColumn(t *testing.T) {
	require.Len(t, service.Tables, 3)
	for _, table := range service.Tables {
		assert.Contains(t, service.SchemaDescription, table.Name+" with columns "+strings.Join(table.Columns, ","))
	}
	assert.True(t, strings.HasPrefix(service.SchemaDescription, "There are three table with following columns"))
}

func TestSystemInstruction_CoversAllTables(t *testing.T) {
	for _, name := range []string{"Event", "Heartbeat", "Perf", "join", "top 10", "summarize"} {
		assert.Contains(t, service.SystemInstruction, name)
	}
}
