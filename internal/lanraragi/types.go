package lanraragi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Minion job states the thumbnail poller branches on. Jobs report
// "inactive" or "active" while queued or running.
const (
	JobFinished = "finished"
	JobFailed   = "failed"
)

// SearchPage is one page of the paginated archive index.
type SearchPage struct {
	ArchiveIDs []string
	Total      int
}

// ThumbnailResult holds either the thumbnail bytes or, when the server
// deferred generation to a background job, the job id to poll.
type ThumbnailResult struct {
	Data  []byte
	JobID string
}

// Deferred reports whether the thumbnail must be polled for.
func (r *ThumbnailResult) Deferred() bool {
	return r.JobID != ""
}

// Raw API response types. LANraragi's search payload follows the
// DataTables convention; the data entries changed shape across server
// versions, so decoding is deliberately tolerant.

type rawSearchResponse struct {
	Data            []json.RawMessage `json:"data"`
	RecordsFiltered int               `json:"recordsFiltered"`
	RecordsTotal    int               `json:"recordsTotal"`
}

type rawSearchItem struct {
	ArcID string `json:"arcid"`
	ID    string `json:"id"`
}

func parseSearchPage(body []byte) (*SearchPage, error) {
	var raw rawSearchResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := &SearchPage{
		ArchiveIDs: make([]string, 0, len(raw.Data)),
		Total:      raw.RecordsFiltered,
	}
	if page.Total == 0 {
		page.Total = raw.RecordsTotal
	}

	for i, entry := range raw.Data {
		id, err := parseSearchItem(entry)
		if err != nil {
			return nil, fmt.Errorf("decode search item %d: %w", i, err)
		}
		if id != "" {
			page.ArchiveIDs = append(page.ArchiveIDs, id)
		}
	}
	return page, nil
}

// parseSearchItem accepts an object with an "arcid" (current servers)
// or "id" (older servers) field, or a bare id string.
func parseSearchItem(entry json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(entry))
	if strings.HasPrefix(trimmed, "\"") {
		var id string
		if err := json.Unmarshal(entry, &id); err != nil {
			return "", err
		}
		return id, nil
	}

	var item rawSearchItem
	if err := json.Unmarshal(entry, &item); err != nil {
		return "", err
	}
	if item.ArcID != "" {
		return item.ArcID, nil
	}
	return item.ID, nil
}

// parseJobID pulls the Minion job id out of a 202 body. Servers have
// returned both numeric and string ids.
func parseJobID(body []byte) (string, error) {
	var raw struct {
		Job json.RawMessage `json:"job"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if len(raw.Job) == 0 {
		return "", fmt.Errorf("job response has no job id: %s", truncateBody(body))
	}

	var asString string
	if err := json.Unmarshal(raw.Job, &asString); err == nil {
		return asString, nil
	}
	var asNumber int64
	if err := json.Unmarshal(raw.Job, &asNumber); err == nil {
		return strconv.FormatInt(asNumber, 10), nil
	}
	return "", fmt.Errorf("unrecognized job id %s", string(raw.Job))
}

// parseJobState reads the job state, accepting the legacy "status"
// key as a fallback.
func parseJobState(body []byte) (string, error) {
	var raw struct {
		State  string `json:"state"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode job status: %w", err)
	}
	if raw.State != "" {
		return raw.State, nil
	}
	if raw.Status != "" {
		return raw.Status, nil
	}
	return "", fmt.Errorf("job status has no state: %s", truncateBody(body))
}
