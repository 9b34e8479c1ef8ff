package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// NavigationMenuAdminServiceName is the fully qualified gRPC service name.
const NavigationMenuAdminServiceName = "journal.admin.v1.NavigationMenuAdmin"

// NavigationMenuAdminServer is the admin RPC surface. Messages are structpb.Struct
// values; see NavigationMenuAdminHandler for the fields each call reads and returns.
type NavigationMenuAdminServer interface {
	InstallNavigationMenus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetNavigationMenu(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DispatchRegistrationInvitation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterNavigationMenuAdminServer(s grpc.ServiceRegistrar, srv NavigationMenuAdminServer) {
	s.RegisterService(&NavigationMenuAdminServiceDesc, srv)
}

func unaryHandler(name string, call func(NavigationMenuAdminServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + NavigationMenuAdminServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(NavigationMenuAdminServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(NavigationMenuAdminServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var NavigationMenuAdminServiceDesc = grpc.ServiceDesc{
	ServiceName: NavigationMenuAdminServiceName,
	HandlerType: (*NavigationMenuAdminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "InstallNavigationMenus",
			Handler:    unaryHandler("InstallNavigationMenus", NavigationMenuAdminServer.InstallNavigationMenus),
		},
		{
			MethodName: "GetNavigationMenu",
			Handler:    unaryHandler("GetNavigationMenu", NavigationMenuAdminServer.GetNavigationMenu),
		},
		{
			MethodName: "DispatchRegistrationInvitation",
			Handler:    unaryHandler("DispatchRegistrationInvitation", NavigationMenuAdminServer.DispatchRegistrationInvitation),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "journal/admin/v1/navigation_menu_admin.proto",
}
