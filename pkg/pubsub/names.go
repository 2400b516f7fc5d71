package pubsub

import (
	"fmt"
	"strings"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

// names expands short topic and subscription ids into full resource names
// for one project. Names already in projects/<p>/<kind>/<id> form pass through.
type names struct {
	project string
}

func (n names) topic(id string) string        { return n.expand(kindTopic, id) }
func (n names) subscription(id string) string { return n.expand(kindSubscription, id) }

func (n names) expand(kind, id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if strings.HasPrefix(id, "projects/") && strings.Contains(id, "/"+kind+"/") {
		return id
	}
	project := strings.TrimSpace(n.project)
	if project == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", project, kind, id)
}
