package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// FieldError 字段级校验错误
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ItemDetails 不同类型条目的附加字段，按类型分为固定几种
type ItemDetails interface {
	Kind() ItemType
	Validate() error
}

type EventDetails struct {
	Date          string `json:"date"`
	Link          string `json:"link,omitempty"`
	CodeOfConduct string `json:"code_of_conduct,omitempty"`
}

func (EventDetails) Kind() ItemType { return ItemTypeEvent }

var eventDateLayouts = []string{"2006-01-02", "2006-01-02T15:04", time.RFC3339}

func (d EventDetails) Validate() error {
	if strings.TrimSpace(d.Date) == "" {
		return &FieldError{Field: "date", Message: "Event date is required"}
	}
	for _, layout := range eventDateLayouts {
		if _, err := time.Parse(layout, d.Date); err == nil {
			return nil
		}
	}
	return &FieldError{Field: "date", Message: "Invalid event date"}
}

type IssueDetails struct {
	Category string `json:"category"`
	Urgency  string `json:"urgency,omitempty"`
}

func (IssueDetails) Kind() ItemType { return ItemTypeIssue }

func (d IssueDetails) Validate() error {
	if strings.TrimSpace(d.Category) == "" {
		return &FieldError{Field: "category", Message: "Issue category is required"}
	}
	return nil
}

type NoticeDetails struct {
	ValidUntil string `json:"valid_until,omitempty"`
	Contact    string `json:"contact,omitempty"`
}

func (NoticeDetails) Kind() ItemType { return ItemTypeNotice }

func (d NoticeDetails) Validate() error {
	if d.ValidUntil == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", d.ValidUntil); err != nil {
		return &FieldError{Field: "valid_until", Message: "Invalid date"}
	}
	return nil
}

type ReportDetails struct {
	Confidential bool   `json:"confidential"`
	Priority     string `json:"priority,omitempty"`
}

func (ReportDetails) Kind() ItemType { return ItemTypeReport }

func (ReportDetails) Validate() error { return nil }

// DetailsFromForm 按类型从表单取值构建附加字段
func DetailsFromForm(t ItemType, get func(string) string) (ItemDetails, error) {
	switch t {
	case ItemTypeEvent:
		return EventDetails{Date: get("date"), Link: get("link"), CodeOfConduct: get("code_of_conduct")}, nil
	case ItemTypeIssue:
		return IssueDetails{Category: get("category"), Urgency: get("urgency")}, nil
	case ItemTypeNotice:
		return NoticeDetails{ValidUntil: get("valid_until"), Contact: get("contact")}, nil
	case ItemTypeReport:
		v := strings.ToLower(get("confidential"))
		return ReportDetails{Confidential: v == "1" || v == "true" || v == "on", Priority: get("priority")}, nil
	}
	return nil, &FieldError{Field: "type", Message: "Invalid item type"}
}

// EncodeDetails 存储边界上的编码
func EncodeDetails(d ItemDetails) (datatypes.JSON, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// DecodeDetails 按条目类型解码附加字段
func DecodeDetails(t ItemType, raw []byte) (ItemDetails, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var (
		d   ItemDetails
		err error
	)
	switch t {
	case ItemTypeEvent:
		var v EventDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ItemTypeIssue:
		var v IssueDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ItemTypeNotice:
		var v NoticeDetails
		err = json.Unmarshal(raw, &v)
		d = v
	case ItemTypeReport:
		var v ReportDetails
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("unknown item type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s details: %w", t, err)
	}
	return d, nil
}
