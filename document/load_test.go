/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDocumentJSON = `{
  "description": {"participantInn": "7700000000"},
  "doc_id": "doc-1",
  "doc_status": "DRAFT",
  "doc_type": "LP_INTRODUCE_GOODS",
  "importRequest": true,
  "owner_inn": "7711111111",
  "participant_inn": "7700000000",
  "producer_inn": "7722222222",
  "production_date": "2024-01-02",
  "production_type": "OWN_PRODUCTION",
  "products": [{"certificate_document": "CONFORMITY_CERTIFICATE", "certificate_document_date": "2023-12-01"}],
  "reg_date": "2024-01-03",
  "reg_number": "42"
}`

const testDocumentYAML = `
description:
  participantInn: "7700000000"
doc_id: doc-1
doc_status: DRAFT
doc_type: LP_INTRODUCE_GOODS
importRequest: true
owner_inn: "7711111111"
participant_inn: "7700000000"
producer_inn: "7722222222"
production_date: "2024-01-02"
production_type: OWN_PRODUCTION
products:
  - certificate_document: CONFORMITY_CERTIFICATE
    certificate_document_date: "2023-12-01"
reg_date: "2024-01-03"
reg_number: "42"
`

func wantTestDocument() *Document {
	return &Document{
		Description:    &Description{ParticipantINN: "7700000000"},
		DocID:          "doc-1",
		DocStatus:      "DRAFT",
		DocType:        "LP_INTRODUCE_GOODS",
		ImportRequest:  true,
		OwnerINN:       "7711111111",
		ParticipantINN: "7700000000",
		ProducerINN:    "7722222222",
		ProductionDate: "2024-01-02",
		ProductionType: "OWN_PRODUCTION",
		Products: []Product{
			{CertificateDocument: "CONFORMITY_CERTIFICATE", CertificateDocumentDate: "2023-12-01"},
		},
		RegDate:   "2024-01-03",
		RegNumber: "42",
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		Name   string
		Data   string
		Format Format
	}{
		{Name: "json", Data: testDocumentJSON, Format: FormatJSON},
		{Name: "yaml", Data: testDocumentYAML, Format: FormatYAML},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.Name, func(t *testing.T) {
			doc, err := Load(strings.NewReader(tt.Data), tt.Format)
			require.NoError(t, err)
			require.Equal(t, wantTestDocument(), doc)
		})
	}

	t.Run("unknown field is rejected", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"doc_idd": "x"}`), FormatJSON)
		require.Error(t, err)
	})

	t.Run("empty yaml gives empty document", func(t *testing.T) {
		doc, err := Load(strings.NewReader(""), FormatYAML)
		require.NoError(t, err)
		require.Equal(t, &Document{}, doc)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Load(strings.NewReader("{}"), Format("xml"))
		require.EqualError(t, err, `unknown document format "xml"`)
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(testDocumentJSON), 0o600))
	doc, err := LoadFile(jsonPath)
	require.NoError(t, err)
	require.Equal(t, wantTestDocument(), doc)

	ymlPath := filepath.Join(dir, "doc.yml")
	require.NoError(t, os.WriteFile(ymlPath, []byte(testDocumentYAML), 0o600))
	doc, err = LoadFile(ymlPath)
	require.NoError(t, err)
	require.Equal(t, wantTestDocument(), doc)

	_, err = LoadFile(filepath.Join(dir, "doc.txt"))
	require.ErrorContains(t, err, "unsupported document file extension")

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocument_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(wantTestDocument())
	require.NoError(t, err)
	require.JSONEq(t, testDocumentJSON, string(data))

	// Empty document keeps all keys, as the registration API expects.
	data, err = json.Marshal(&Document{})
	require.NoError(t, err)
	require.Contains(t, string(data), `"description":null`)
	require.Contains(t, string(data), `"products":null`)
	require.Contains(t, string(data), `"importRequest":false`)
}
