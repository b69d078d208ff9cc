// Package prediction turns a raw request payload into a post-processed visitor
// forecast. The regression model is consumed through the Regressor interface;
// everything after it (rules, confidence band, crowd level) is deterministic.
package prediction
