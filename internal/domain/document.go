package domain

// Document is an atomic retrievable unit: a specification chunk or a customer
// review, immutable once ingested by the offline ETL. Metadata fields are
// optional; zero values mean the ETL did not record them.
type Document struct {
	ID          string
	Source      Source
	Text        string
	ProductID   string
	ProductName string
	Brand       string
	Category    string
	Price       float64
	Rating      float64
	Warranty    string
}
