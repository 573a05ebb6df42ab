package searchidx

import (
	"fmt"

	"github.com/steeef/search-ui/internal/session"
)

// sessionFromFields maps a bleve hit's stored Fields map onto a
// session.Session, failing if any mandatory field is missing or of an
// unexpected type.
func sessionFromFields(id string, fields map[string]interface{}) (session.Session, error) {
	s := session.Session{SessionID: id}

	str, err := requireString(fields, "agent")
	if err != nil {
		return s, err
	}
	s.Agent = session.NormalizeAgent(str)

	if s.Project, err = requireString(fields, "project"); err != nil {
		return s, err
	}
	if s.Branch, err = requireString(fields, "branch"); err != nil {
		return s, err
	}
	if s.Cwd, err = requireString(fields, "cwd"); err != nil {
		return s, err
	}
	if s.Created, err = requireString(fields, "created"); err != nil {
		return s, err
	}
	if s.Modified, err = requireString(fields, "modified"); err != nil {
		return s, err
	}
	if s.Lines, err = requireInt(fields, "lines"); err != nil {
		return s, err
	}
	if s.ExportPath, err = requireString(fields, "export_path"); err != nil {
		return s, err
	}
	if s.FirstMsgRole, err = requireString(fields, "first_msg_role"); err != nil {
		return s, err
	}
	if s.FirstMsgContent, err = requireString(fields, "first_msg_content"); err != nil {
		return s, err
	}
	if s.LastMsgRole, err = requireString(fields, "last_msg_role"); err != nil {
		return s, err
	}
	if s.LastMsgContent, err = requireString(fields, "last_msg_content"); err != nil {
		return s, err
	}
	derivation, err := requireString(fields, "derivation_type")
	if err != nil {
		return s, err
	}
	s.DerivationType = session.DerivationType(derivation)
	if s.IsSidechain, err = requireBool(fields, "is_sidechain"); err != nil {
		return s, err
	}
	// claude_home is optional: absent simply leaves it empty.
	s.ClaudeHome = optionalString(fields, "claude_home")

	return s, nil
}

func requireString(fields map[string]interface{}, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	default:
		return fmt.Sprintf("%v", t), nil
	}
}

func optionalString(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func requireInt(fields map[string]interface{}, key string) (int, error) {
	v, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case int:
		return t, nil
	case string:
		var n int
		if _, err := fmt.Sscanf(t, "%d", &n); err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %v", key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("field %q has unexpected type %T", key, v)
	}
}

func requireBool(fields map[string]interface{}, key string) (bool, error) {
	v, ok := fields[key]
	if !ok {
		return false, fmt.Errorf("missing field %q", key)
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return t == "true" || t == "T" || t == "1", nil
	case float64:
		return t != 0, nil
	default:
		return false, fmt.Errorf("field %q has unexpected type %T", key, v)
	}
}
