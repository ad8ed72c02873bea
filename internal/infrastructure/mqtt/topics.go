package mqtt

import "strconv"

// topicPrefix namespaces everything this service publishes.
const topicPrefix = "hospilock"

// LockEventTopic carries raw device state reports, before they are
// matched to a registered lock.
func LockEventTopic() string {
	return topicPrefix + "/event/lock"
}

// LockStateTopic carries confirmed transitions for one lock,
// e.g. "hospilock/event/lock/3".
func LockStateTopic(lockID int) string {
	return topicPrefix + "/event/lock/" + strconv.Itoa(lockID)
}
