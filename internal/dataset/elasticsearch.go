// internal/dataset/elasticsearch.go
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	scrollKeepAlive = 2 * time.Minute
	scrollBatchSize = 5000
)

type esDocument struct {
	TransactionID string  `json:"transaction_id"`
	Timestamp     string  `json:"timestamp"`
	AmountINR     float64 `json:"amount_inr"`
	State         string  `json:"state"`
	Bank          string  `json:"bank"`
	Category      string  `json:"category"`
	Device        string  `json:"device"`
	Network       string  `json:"network"`
	Type          string  `json:"transaction_type"`
	AgeGroup      string  `json:"age_group"`
	Status        string  `json:"transaction_status"`
	IsFraud       bool    `json:"fraud_flag"`
}

type esPage struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			Source esDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// LoadElasticsearch scrolls the full transaction index into memory and
// returns the finalized table.
func LoadElasticsearch(ctx context.Context, client *elasticsearch.Client, index string) (*Table, error) {
	if index == "" {
		return nil, fmt.Errorf("dataset index name is required")
	}

	size := scrollBatchSize
	req := esapi.SearchRequest{
		Index:  []string{index},
		Body:   strings.NewReader(`{"query":{"match_all":{}},"sort":["_doc"]}`),
		Size:   &size,
		Scroll: scrollKeepAlive,
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("open dataset scroll: %w", err)
	}

	var rows []Transaction
	scrollID := ""
	for {
		if res.IsError() {
			res.Body.Close()
			return nil, fmt.Errorf("dataset scroll error: %s", res.Status())
		}

		var page esPage
		if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
			res.Body.Close()
			return nil, fmt.Errorf("decode dataset page: %w", err)
		}
		res.Body.Close()

		if len(page.Hits.Hits) == 0 {
			scrollID = page.ScrollID
			break
		}

		for _, hit := range page.Hits.Hits {
			txn, err := documentToTransaction(hit.Source)
			if err != nil {
				return nil, err
			}
			rows = append(rows, txn)
		}

		scrollID = page.ScrollID
		res, err = client.Scroll(
			client.Scroll.WithContext(ctx),
			client.Scroll.WithScrollID(scrollID),
			client.Scroll.WithScroll(scrollKeepAlive),
		)
		if err != nil {
			return nil, fmt.Errorf("continue dataset scroll: %w", err)
		}
	}

	if scrollID != "" {
		clear, err := client.ClearScroll(
			client.ClearScroll.WithContext(ctx),
			client.ClearScroll.WithScrollID(scrollID),
		)
		if err == nil {
			clear.Body.Close()
		}
	}

	return NewTable(rows), nil
}

func documentToTransaction(doc esDocument) (Transaction, error) {
	ts, err := parseTimestamp(doc.Timestamp)
	if err != nil {
		return Transaction{}, fmt.Errorf("document %s: %w", doc.TransactionID, err)
	}

	txn := Transaction{
		ID:        doc.TransactionID,
		Timestamp: ts,
		AmountINR: doc.AmountINR,
		State:     doc.State,
		Bank:      doc.Bank,
		Category:  doc.Category,
		Device:    doc.Device,
		Network:   doc.Network,
		Type:      doc.Type,
		AgeGroup:  doc.AgeGroup,
		Status:    strings.ToUpper(doc.Status),
		IsFraud:   doc.IsFraud,
	}
	if txn.Status == "" {
		txn.Status = StatusSuccess
	}
	txn.deriveTemporal()
	return txn, nil
}
