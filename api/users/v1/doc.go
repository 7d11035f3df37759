// Package usersv1 holds the protobuf contract of the users.v1.UserService
// gRPC service. The .pb.go files are generated from users.proto.
package usersv1

//go:generate protoc --proto_path=../.. --go_out=../.. --go_opt=paths=source_relative --go-grpc_out=../.. --go-grpc_opt=paths=source_relative users/v1/users.proto
