// Package mqtt defines the broker-facing contract of the prediction service:
// the publisher interface and the JSON messages exchanged on topics.
package mqtt
