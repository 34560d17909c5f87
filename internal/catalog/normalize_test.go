package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opconsole/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantOK    bool
		wantID    string
		wantName  string
		wantCount *int
	}{
		{name: "plain", raw: `{"id":"12","name":"Nordwerk","count":5}`, wantOK: true, wantID: "12", wantName: "Nordwerk", wantCount: intPtr(5)},
		{name: "numeric id", raw: `{"id":42,"title":"Südhaus"}`, wantOK: true, wantID: "42", wantName: "Südhaus"},
		{name: "alternate id key", raw: `{"factory_id":" 7 ","factory_name":"Ost"}`, wantOK: true, wantID: "7", wantName: "Ost"},
		{name: "empty id falls through", raw: `{"id":"","value":"v1"}`, wantOK: true, wantID: "v1"},
		{name: "count from string", raw: `{"id":"1","items":"12"}`, wantOK: true, wantID: "1", wantCount: intPtr(12)},
		{name: "whole float count", raw: `{"id":"1","total":3.0}`, wantOK: true, wantID: "1", wantCount: intPtr(3)},
		{name: "fractional count dropped", raw: `{"id":"1","count":2.5}`, wantOK: true, wantID: "1"},
		{name: "non numeric count dropped", raw: `{"id":"1","count":"many"}`, wantOK: true, wantID: "1"},
		{name: "later count key used", raw: `{"id":"1","count":null,"itemCount":9}`, wantOK: true, wantID: "1", wantCount: intPtr(9)},
		{name: "no id", raw: `{"name":"orphan"}`},
		{name: "not an object", raw: `5`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := Normalize(domain.SourceJVProducts, json.RawMessage(tt.raw))
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, domain.SourceJVProducts, entry.Type)
			assert.Equal(t, tt.wantID, entry.ID)
			assert.Equal(t, tt.wantName, entry.Name)
			assert.Equal(t, tt.wantCount, entry.ItemCount)
		})
	}
}

func TestNormalizeID(t *testing.T) {
	id, ok := NormalizeID(json.RawMessage(`{"collectionId":1001}`))
	require.True(t, ok)
	assert.Equal(t, "1001", id)

	_, ok = NormalizeID(json.RawMessage(`{"name":"x"}`))
	assert.False(t, ok)
}

func intPtr(n int) *int {
	return &n
}
