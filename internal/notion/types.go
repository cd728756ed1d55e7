// Defines Notion API request and response types.

package notion

import (
	"time"
)

// PropertyType is one of Notion's fixed property kinds.
//
// Decode and Encode dispatch exhaustively on this enumeration; adding a new
// Notion property type means adding a case to both switches.
type PropertyType string

// The closed set of property types the codec understands.
const (
	TypeTitle          PropertyType = "title"
	TypeRichText       PropertyType = "rich_text"
	TypeNumber         PropertyType = "number"
	TypeSelect         PropertyType = "select"
	TypeMultiSelect    PropertyType = "multi_select"
	TypeDate           PropertyType = "date"
	TypePeople         PropertyType = "people"
	TypeFiles          PropertyType = "files"
	TypeCheckbox       PropertyType = "checkbox"
	TypeURL            PropertyType = "url"
	TypeEmail          PropertyType = "email"
	TypePhoneNumber    PropertyType = "phone_number"
	TypeStatus         PropertyType = "status"
	TypeFormula        PropertyType = "formula"
	TypeRollup         PropertyType = "rollup"
	TypeRelation       PropertyType = "relation"
	TypeUniqueID       PropertyType = "unique_id"
	TypeCreatedTime    PropertyType = "created_time"
	TypeCreatedBy      PropertyType = "created_by"
	TypeLastEditedTime PropertyType = "last_edited_time"
	TypeLastEditedBy   PropertyType = "last_edited_by"
)

// ReadOnly reports whether the property type is computed by Notion and can
// never be written. Encode returns omit unconditionally for these.
func (t PropertyType) ReadOnly() bool {
	switch t {
	case TypeFormula, TypeRollup, TypeUniqueID, TypeCreatedTime, TypeCreatedBy, TypeLastEditedTime, TypeLastEditedBy:
		return true
	default:
		return false
	}
}

// PaginatedResponse is the common structure for paginated API responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from the database query endpoint.
type QueryResponse = PaginatedResponse[Page]

// Parent represents the parent of a page or database.
type Parent struct {
	Type       string `json:"type"` // "database_id", "page_id", "workspace", "block_id"
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	Workspace  bool   `json:"workspace,omitempty"`
}

// Database represents a Notion database.
type Database struct {
	Object         string                `json:"object"`
	ID             string                `json:"id"`
	CreatedTime    time.Time             `json:"created_time"`
	LastEditedTime time.Time             `json:"last_edited_time"`
	Title          []RichText            `json:"title"`
	Description    []RichText            `json:"description"`
	Properties     map[string]DBProperty `json:"properties"`
	Parent         Parent                `json:"parent"`
	URL            string                `json:"url"`
	Archived       bool                  `json:"archived"`
}

// DBProperty represents a property definition in a database schema.
type DBProperty struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        PropertyType `json:"type"`
	Description string       `json:"description,omitempty"`

	// Type-specific configuration
	Number      *NumberConfig   `json:"number,omitempty"`
	Select      *SelectConfig   `json:"select,omitempty"`
	MultiSelect *SelectConfig   `json:"multi_select,omitempty"`
	Status      *StatusConfig   `json:"status,omitempty"`
	Formula     *FormulaConfig  `json:"formula,omitempty"`
	Relation    *RelationConfig `json:"relation,omitempty"`
	Rollup      *RollupConfig   `json:"rollup,omitempty"`
	UniqueID    *UniqueIDConfig `json:"unique_id,omitempty"`
}

// NumberConfig defines number property configuration.
type NumberConfig struct {
	Format string `json:"format"` // number, number_with_commas, percent, dollar, etc.
}

// SelectConfig defines select/multi_select property configuration.
type SelectConfig struct {
	Options []SelectOption `json:"options"`
}

// SelectOption represents a select option.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// StatusConfig defines status property configuration.
type StatusConfig struct {
	Options []SelectOption `json:"options"`
	Groups  []StatusGroup  `json:"groups"`
}

// StatusGroup represents a group of status options.
type StatusGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	OptionIDs []string `json:"option_ids"`
}

// FormulaConfig defines formula property configuration.
type FormulaConfig struct {
	Expression string `json:"expression"`
}

// RelationConfig defines relation property configuration.
type RelationConfig struct {
	DatabaseID string `json:"database_id"`
	Type       string `json:"type"` // "single_property" or "dual_property"
}

// RollupConfig defines rollup property configuration.
type RollupConfig struct {
	RelationPropertyName string `json:"relation_property_name"`
	RelationPropertyID   string `json:"relation_property_id"`
	RollupPropertyName   string `json:"rollup_property_name"`
	RollupPropertyID     string `json:"rollup_property_id"`
	Function             string `json:"function"` // count, count_values, sum, average, etc.
}

// UniqueIDConfig defines unique_id property configuration.
type UniqueIDConfig struct {
	Prefix string `json:"prefix,omitempty"`
}

// Page represents a Notion page (including database rows).
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// PropertyValue represents a property value on a page.
type PropertyValue struct {
	ID   string       `json:"id"`
	Type PropertyType `json:"type"`

	// Value fields based on type
	Title          []RichText      `json:"title,omitempty"`
	RichText       []RichText      `json:"rich_text,omitempty"`
	Number         *float64        `json:"number,omitempty"`
	Select         *SelectOption   `json:"select,omitempty"`
	MultiSelect    []SelectOption  `json:"multi_select,omitempty"`
	Date           *DateValue      `json:"date,omitempty"`
	Checkbox       *bool           `json:"checkbox,omitempty"`
	URL            *string         `json:"url,omitempty"`
	Email          *string         `json:"email,omitempty"`
	PhoneNumber    *string         `json:"phone_number,omitempty"`
	Formula        *FormulaValue   `json:"formula,omitempty"`
	Relation       []RelationValue `json:"relation,omitempty"`
	Rollup         *RollupValue    `json:"rollup,omitempty"`
	People         []Person        `json:"people,omitempty"`
	Files          []FileValue     `json:"files,omitempty"`
	CreatedTime    *time.Time      `json:"created_time,omitempty"`
	CreatedBy      *Person         `json:"created_by,omitempty"`
	LastEditedTime *time.Time      `json:"last_edited_time,omitempty"`
	LastEditedBy   *Person         `json:"last_edited_by,omitempty"`
	Status         *SelectOption   `json:"status,omitempty"`
	UniqueID       *UniqueIDValue  `json:"unique_id,omitempty"`
}

// RichText represents formatted text content.
type RichText struct {
	Type        string       `json:"type,omitempty"` // "text", "mention", "equation"
	Text        *TextContent `json:"text,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        *string      `json:"href,omitempty"`
}

// TextContent represents plain text content.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link represents a hyperlink.
type Link struct {
	URL string `json:"url"`
}

// Annotations represents text formatting.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// DateValue represents a date property value.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// FormulaValue represents a formula result.
type FormulaValue struct {
	Type    string     `json:"type"` // "string", "number", "boolean", "date"
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// RelationValue represents a relation to another page.
type RelationValue struct {
	ID string `json:"id"`
}

// RollupValue represents a rollup result.
type RollupValue struct {
	Type     string          `json:"type"` // "number", "date", "array", "unsupported", "incomplete"
	Number   *float64        `json:"number,omitempty"`
	Date     *DateValue      `json:"date,omitempty"`
	Array    []PropertyValue `json:"array,omitempty"`
	Function string          `json:"function,omitempty"`
}

// Person represents a Notion user.
type Person struct {
	Object    string         `json:"object,omitempty"`
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	Type      string         `json:"type,omitempty"` // "person" or "bot"
	Person    *PersonDetails `json:"person,omitempty"`
}

// PersonDetails contains person-specific details.
type PersonDetails struct {
	Email string `json:"email"`
}

// FileValue represents a file property value.
type FileValue struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "file" or "external"
	File     *File  `json:"file,omitempty"`
	External *File  `json:"external,omitempty"`
}

// File represents a file reference.
type File struct {
	URL        string     `json:"url"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// UniqueIDValue represents a unique_id property value.
type UniqueIDValue struct {
	Prefix *string `json:"prefix,omitempty"`
	Number int     `json:"number"`
}

// PropertyPayload is the write-side shape of a single property, keyed by
// property name in page create/update requests. Exactly one field is set.
type PropertyPayload struct {
	Title       []RichText      `json:"title,omitempty"`
	RichText    []RichText      `json:"rich_text,omitempty"`
	Number      *float64        `json:"number,omitempty"`
	Select      *SelectOption   `json:"select,omitempty"`
	MultiSelect []SelectOption  `json:"multi_select,omitempty"`
	Status      *SelectOption   `json:"status,omitempty"`
	Date        *DateValue      `json:"date,omitempty"`
	Checkbox    *bool           `json:"checkbox,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Email       *string         `json:"email,omitempty"`
	PhoneNumber *string         `json:"phone_number,omitempty"`
	Relation    []RelationValue `json:"relation,omitempty"`
	People      []Person        `json:"people,omitempty"`
}

// CreatePageRequest is the request body for page creation.
type CreatePageRequest struct {
	Parent     Parent                     `json:"parent"`
	Properties map[string]PropertyPayload `json:"properties"`
}

// UpdatePageRequest is the request body for page updates.
type UpdatePageRequest struct {
	Properties map[string]PropertyPayload `json:"properties,omitempty"`
	Archived   *bool                      `json:"archived,omitempty"`
}

// Error represents a Notion API error response.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
