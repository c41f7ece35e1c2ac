package curatorapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mmcdole/curator/internal/domain"
)

// listResponse is the body of GET /api/torrents
type listResponse struct {
	Torrents json.RawMessage `json:"torrents"`
	Count    int             `json:"count"`
}

type torrentDTO struct {
	ID          flexID `json:"id"`
	Title       string `json:"title"`
	Size        int64  `json:"size"`
	MatchReason string `json:"match_reason"`
	Status      string `json:"status"`
	Link        string `json:"link"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// flexID accepts both JSON numbers and strings; the backend emits integers
// but the dashboard treats ids as opaque.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("torrent id is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// toDomain maps a DTO, rejecting entries the dashboard cannot display
func (t torrentDTO) toDomain() (domain.Torrent, error) {
	status := domain.Status(t.Status)
	if !status.Valid() {
		return domain.Torrent{}, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, t.Status)
	}
	if t.ID == "" {
		return domain.Torrent{}, fmt.Errorf("torrent has empty id")
	}
	size := t.Size
	if size < 0 {
		size = 0
	}
	return domain.Torrent{
		ID:          string(t.ID),
		Title:       t.Title,
		Size:        size,
		MatchReason: t.MatchReason,
		Status:      status,
		Link:        t.Link,
	}, nil
}
