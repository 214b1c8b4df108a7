package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/cfn-diff-reporter/internal/errors"
	"github.com/olusolaa/cfn-diff-reporter/mocks"
)

func TestComponentRegistry_DocumentSinks(t *testing.T) {
	r := NewComponentRegistry()
	require.NoError(t, r.RegisterDocumentSink(&mocks.MockDocumentSink{SinkType: "text"}))
	require.NoError(t, r.RegisterDocumentSink(&mocks.MockDocumentSink{SinkType: "markdown"}))

	err := r.RegisterDocumentSink(&mocks.MockDocumentSink{SinkType: "text"})
	assert.True(t, errors.Is(err, errors.CodeInternal))
	assert.Error(t, r.RegisterDocumentSink(nil))
	assert.Error(t, r.RegisterDocumentSink(&mocks.MockDocumentSink{}))

	sinks := r.DocumentSinks()
	require.Len(t, sinks, 2)
	assert.Equal(t, "text", sinks[0].Type())
	assert.Equal(t, "markdown", sinks[1].Type())

	_, err = r.GetDocumentSink("s3")
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))
	sink, err := r.GetDocumentSink("markdown")
	require.NoError(t, err)
	assert.Equal(t, "markdown", sink.Type())
}

func TestComponentRegistry_Notifiers(t *testing.T) {
	r := NewComponentRegistry()
	require.NoError(t, r.RegisterNotifier(&mocks.MockNotifier{NotifierType: "github"}))
	require.NoError(t, r.RegisterNotifier(&mocks.MockNotifier{NotifierType: "sns"}))
	assert.Error(t, r.RegisterNotifier(&mocks.MockNotifier{NotifierType: "sns"}))
	assert.Error(t, r.RegisterNotifier(nil))

	notifiers := r.Notifiers()
	require.Len(t, notifiers, 2)
	assert.Equal(t, "github", notifiers[0].Type())
}
