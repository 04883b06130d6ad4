package score

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseSections flattens an ordered mapping of
// category -> (group ->)* item label -> score into sections. Each top-level
// key becomes a Section; every mapping whose values are all scalars becomes a
// Domain named by its own key. Document order is preserved.
func ParseSections(node *yaml.Node) ([]Section, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, shapeErr(nil, "expected a mapping of categories, got %s", kindName(node))
	}
	var sections []Section
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		path := []string{key}
		if val.Kind != yaml.MappingNode {
			return nil, shapeErr(path, "expected a mapping, got %s", kindName(val))
		}
		if isLeafMapping(val) {
			// A category holding items directly is its own domain.
			d, err := parseDomain(key, val, path)
			if err != nil {
				return nil, err
			}
			sections = append(sections, Section{Key: key, Domains: nonEmpty(d)})
			continue
		}
		domains, err := flatten(val, path, nil)
		if err != nil {
			return nil, err
		}
		sections = append(sections, Section{Key: key, Domains: domains})
	}
	return sections, nil
}

func flatten(node *yaml.Node, path []string, out []Domain) ([]Domain, error) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		p := append(path[:len(path):len(path)], key)
		if val.Kind != yaml.MappingNode {
			return nil, shapeErr(p, "mixed grouping: expected a mapping, got %s", kindName(val))
		}
		if isLeafMapping(val) {
			d, err := parseDomain(key, val, p)
			if err != nil {
				return nil, err
			}
			out = append(out, nonEmpty(d)...)
			continue
		}
		var err error
		if out, err = flatten(val, p, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isLeafMapping reports whether a non-empty mapping holds only scalars.
// Mixed mappings are rejected later by parseDomain or flatten.
func isLeafMapping(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	return n.Content[1].Kind == yaml.ScalarNode
}

func parseDomain(name string, node *yaml.Node, path []string) (Domain, error) {
	d := Domain{Name: name}
	for i := 0; i+1 < len(node.Content); i += 2 {
		label := node.Content[i].Value
		val := node.Content[i+1]
		p := append(path[:len(path):len(path)], label)
		if val.Kind != yaml.ScalarNode {
			return Domain{}, shapeErr(p, "mixed domain: expected a score, got %s", kindName(val))
		}
		n, err := strconv.Atoi(val.Value)
		if err != nil {
			return Domain{}, shapeErr(p, "score %q is not an integer", val.Value)
		}
		v, err := ParseValue(n)
		if err != nil {
			return Domain{}, shapeErr(p, "%v", err)
		}
		d.Items = append(d.Items, Item{Label: label, Value: v})
	}
	return d, nil
}

func nonEmpty(d Domain) []Domain {
	if len(d.Items) == 0 {
		return nil
	}
	return []Domain{d}
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}
