package audit

// Category classifies an AuditEvent by its primary purpose, driving
// default retention. This is a closed enumeration.
type Category string

const (
	CategoryAuthentication  Category = "authentication"
	CategoryAuthorization   Category = "authorization"
	CategoryUserManagement  Category = "user_management"
	CategoryMission         Category = "mission"
	CategoryForge           Category = "forge"
	CategoryConfiguration   Category = "configuration"
	CategoryFileSystem      Category = "file_system"
	CategoryAPICall         Category = "api_call"
	CategorySystem          Category = "system"
	CategorySecurity        Category = "security"
	CategoryDataTransfer    Category = "data_transfer"
)

var validCategories = map[Category]bool{
	CategoryAuthentication: true,
	CategoryAuthorization:  true,
	CategoryUserManagement: true,
	CategoryMission:        true,
	CategoryForge:          true,
	CategoryConfiguration:  true,
	CategoryFileSystem:     true,
	CategoryAPICall:        true,
	CategorySystem:         true,
	CategorySecurity:       true,
	CategoryDataTransfer:   true,
}

// IsValid reports whether c is one of the closed set of categories.
func (c Category) IsValid() bool { return validCategories[c] }

// MarshalJSON renders the category as its string token.
func (c Category) MarshalJSON() ([]byte, error) {
	return quoteJSON(string(c)), nil
}

// UnmarshalJSON parses a category token, rejecting anything outside the
// closed enumeration.
func (c *Category) UnmarshalJSON(b []byte) error {
	s, err := unquoteJSON(b)
	if err != nil {
		return err
	}
	cat := Category(s)
	if !cat.IsValid() {
		return newDeserializationError("category", s)
	}
	*c = cat
	return nil
}
