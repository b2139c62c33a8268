// Package rpc provides the gRPC front end for the budget service.
//
// The wire contract is the proto3 schema in budget.proto, service
// project_budget.ProjectBudgets. The messages are small and fixed, so
// they are encoded by hand with protowire instead of generated code;
// the custom codec in codec.go plugs them into grpc-go. Any client
// built from budget.proto interoperates with this server.
package rpc
