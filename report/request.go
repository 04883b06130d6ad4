package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wudi/reportcard/score"
)

// Request is one student's assessment input.
type Request struct {
	Student    score.Student
	Sections   []score.Section
	Narrative  string
	ActionPlan []score.ActionItem
}

// ParseRequest decodes a YAML or JSON request document:
//
//	student: {name, level, date_of_birth, gender}
//	evaluations: ordered mapping of section -> (group ->)* item -> score
//	narrative: markdown text
//	action_plan: [{item, action}]
//
// Malformed evaluations are reported as *score.InputShapeError.
func ParseRequest(data []byte) (*Request, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, &score.InputShapeError{Reason: "empty request"}
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, &score.InputShapeError{Reason: "request must be a mapping"}
	}

	req := &Request{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		var err error
		switch key {
		case "student":
			err = val.Decode(&req.Student)
		case "evaluations":
			req.Sections, err = score.ParseSections(val)
			if err != nil {
				return nil, err
			}
		case "narrative":
			err = val.Decode(&req.Narrative)
		case "action_plan":
			err = val.Decode(&req.ActionPlan)
		default:
			return nil, &score.InputShapeError{Path: []string{key}, Reason: "unknown key"}
		}
		if err != nil {
			return nil, &score.InputShapeError{Path: []string{key}, Reason: err.Error()}
		}
	}
	return req, nil
}

// LoadRequest reads and parses a request file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	req, err := ParseRequest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}
