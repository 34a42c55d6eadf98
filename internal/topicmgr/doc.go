// Package topicmgr provides a compile-time safe, strongly-typed topic
// management system that eliminates magic strings and centralizes topic
// definitions with their delivery guarantees.
//
// Key Features:
//   - Compile-time safety through strongly-typed topic definitions
//   - Explicit delivery-guarantee metadata per topic
//   - Centralized registry with metadata and discovery
//   - Validation and error handling
//
// Usage:
//
// Topics are defined by the packages that own them:
//
//	var UserCreated = topicmgr.Define(topicmgr.TopicConfig{
//		Name:        "user-created",
//		Description: "Published after a new user account commits",
//		Example:     `{"id":"u1","email":"a@x.com","first_name":"Ada"}`,
//	})
//
// Topics are registered with the manager at startup:
//
//	manager := topicmgr.Default()
//	if err := manager.Register(UserCreated); err != nil {
//		log.Fatal(err)
//	}
//
// Topics can be discovered and listed:
//
//	allTopics := manager.List()
//	topic, ok := manager.Get("user-created")
package topicmgr
