// Package regressor provides the regression models behind the prediction
// service. Implementations register themselves with core/prediction by type
// name: "linear" and "ensemble" evaluate exported model parameters in-process,
// "remote" calls a model server over HTTP and "constant" returns a fixed value.
package regressor
