package grpcinterface

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
)

func isValidAddress(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 {
		return false
	}
	if parts[0] != "" && parts[0] != "localhost" {
		if ip := net.ParseIP(parts[0]); ip == nil {
			return false
		}
	}
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	if port <= 1024 || port > 65535 {
		return false
	}
	return true
}

// serveMux splits the connections accepted on address between the grpc
// server and the http one.
func serveMux(
	address string, grpcServer *grpc.Server, httpServer *http.Server,
) (cmux.CMux, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	mux := cmux.New(lis)
	grpcL := mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldPrefixSendSettings("content-type", "application/grpc"))
	httpL := mux.Match(cmux.HTTP1Fast())

	go grpcServer.Serve(grpcL)
	go httpServer.Serve(httpL)
	go mux.Serve()
	return mux, nil
}
