package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	bookingpb "github.com/Leganyst/therapy-booking/internal/api/booking/v1"
	"github.com/Leganyst/therapy-booking/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC booking server and the background completion sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve")
	}

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		service.LoggingInterceptor(a.log.Named("grpc")),
		service.AuthInterceptor([]byte(a.cfg.Auth.JWTSecret), service.PublicMethods...),
	))
	bookingpb.RegisterBookingServiceServer(grpcServer, service.NewBookingService(a.svc, a.log.Named("api")))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", a.cfg.App.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.App.GRPCAddr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Фоновый свип; при SWEEP_INTERVAL=0 остаётся только ленивый режим.
	if a.cfg.App.SweepInterval > 0 {
		go func() {
			if err := a.svc.Sweeper().Run(ctx, a.cfg.App.SweepInterval); err != nil {
				a.log.Error("sweeper stopped", zap.Error(err))
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("gRPC server listening", zap.String("addr", a.cfg.App.GRPCAddr))
		serveErr <- grpcServer.Serve(lis)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("grpc serve: %w", err)
	}

	a.log.Info("shutting down gRPC server")
	cancel()
	grpcServer.GracefulStop()
	return nil
}
