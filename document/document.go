/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package document

// Document represents a document submitted to the registration API.
type Document struct {
	Description    *Description `json:"description" yaml:"description"`
	DocID          string       `json:"doc_id" yaml:"doc_id"`
	DocStatus      string       `json:"doc_status" yaml:"doc_status"`
	DocType        string       `json:"doc_type" yaml:"doc_type"`
	ImportRequest  bool         `json:"importRequest" yaml:"importRequest"`
	OwnerINN       string       `json:"owner_inn" yaml:"owner_inn"`
	ParticipantINN string       `json:"participant_inn" yaml:"participant_inn"`
	ProducerINN    string       `json:"producer_inn" yaml:"producer_inn"`
	ProductionDate string       `json:"production_date" yaml:"production_date"`
	ProductionType string       `json:"production_type" yaml:"production_type"`
	Products       []Product    `json:"products" yaml:"products"`
	RegDate        string       `json:"reg_date" yaml:"reg_date"`
	RegNumber      string       `json:"reg_number" yaml:"reg_number"`
}

// Description contains the participant the document is described for.
type Description struct {
	ParticipantINN string `json:"participantInn" yaml:"participantInn"`
}

// Product is a single product item of the document.
type Product struct {
	CertificateDocument     string `json:"certificate_document" yaml:"certificate_document"`
	CertificateDocumentDate string `json:"certificate_document_date" yaml:"certificate_document_date"`
}
