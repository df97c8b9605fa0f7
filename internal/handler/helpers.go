package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/ingest"
)

// getPathParam retrieves a path parameter and validates it's not empty.
func getPathParam(c *gin.Context, paramName string) (string, error) {
	value := c.Param(paramName)
	if value == "" {
		return "", fmt.Errorf("%s is required", paramName)
	}
	return value, nil
}

// bindJSON binds the JSON request body to a struct.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return fmt.Errorf("invalid JSON format: %v", err)
	}
	return nil
}

// invoiceFieldsFromForm reads the invoice scalar fields out of a multipart
// form. All values are pass-through strings; validation happens in the
// service.
func invoiceFieldsFromForm(c *gin.Context) domain.InvoiceFields {
	return domain.InvoiceFields{
		ReceiptNumber: c.PostForm("receiptNumber"),
		InvoiceNumber: c.PostForm("invoiceNumber"),
		Date:          c.PostForm("date"),
		Time:          c.PostForm("time"),
		ReceiptType:   domain.ReceiptType(c.PostForm("receiptType")),
		Narrative:     c.PostForm("narrative"),
		Amount:        c.PostForm("amount"),
		Currency:      c.PostForm("currency"),
		CreatedBy:     c.PostForm("createdBy"),
	}
}

// candidatesFromForm reads all files under the given multipart field into
// ingestion candidates.
func candidatesFromForm(c *gin.Context, fieldName string, maxMemory int64) ([]ingest.Candidate, error) {
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}
	if c.Request.MultipartForm == nil {
		return nil, nil
	}

	headers := c.Request.MultipartForm.File[fieldName]
	candidates := make([]ingest.Candidate, 0, len(headers))
	for _, header := range headers {
		cand, err := candidateFromHeader(header)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// candidateFromHeader reads one uploaded file into an ingestion candidate.
func candidateFromHeader(header *multipart.FileHeader) (ingest.Candidate, error) {
	file, err := header.Open()
	if err != nil {
		return ingest.Candidate{}, fmt.Errorf("failed to open uploaded file %s: %v", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ingest.Candidate{}, fmt.Errorf("failed to read uploaded file %s: %v", header.Filename, err)
	}

	return ingest.Candidate{
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Data:         data,
	}, nil
}
