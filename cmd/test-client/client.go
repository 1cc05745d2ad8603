package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"custom-id-generator/internal/pb"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	numOfRequestsFlag = flag.Int("requests", 100, "Number of test requests per 1 server")
	inventoryFlag     = flag.String("inventory", "inv1", "Inventory to issue ids for")
	userFlag          = flag.String("user", "1", "User sending the requests")
	hostFlag          = flag.String("host", "localhost", "Server host")
	httpPortFlag      = flag.Int("http-port", 3000, "Server http port")
	grpcPortFlag      = flag.Int("grpc-port", 3001, "Server grpc port")
)

func main() {
	execStart := time.Now()

	flag.Parse()
	numOfRequests := *numOfRequestsFlag

	httpAddr := fmt.Sprintf("http://%s:%d", *hostFlag, *httpPortFlag)
	grpcAddr := fmt.Sprintf("%s:%d", *hostFlag, *grpcPortFlag)

	grpcClient, conn := initGrpcClient(grpcAddr)
	defer conn.Close()

	var wg sync.WaitGroup
	wg.Add(4)

	var ids sync.Map

	storeOrIncrement := func(key string) {
		if key == "" {
			return
		}

		v, loaded := ids.LoadOrStore(key, 1)
		if loaded {
			ids.Store(key, v.(int)+1)
		}
	}

	for range 2 {
		go func() {
			defer wg.Done()
			for i := 1; i <= numOfRequests; i++ {
				storeOrIncrement(mockHttpRequest(httpAddr))
			}
		}()

		go func() {
			defer wg.Done()
			for i := 1; i <= numOfRequests; i++ {
				storeOrIncrement(mockGrpcRequest(grpcClient, grpcAddr))
			}
		}()
	}

	wg.Wait()

	fmt.Printf("Total time of execution %d requests: %.3fs\n", numOfRequests*4, time.Since(execStart).Seconds())

	i := 0
	ids.Range(func(key, value any) bool {
		i++
		if value.(int) > 1 {
			fmt.Println("Found duplicate id: ", key)
		}

		return true
	})

	fmt.Println("Total received ids: ", i)
	if numOfRequests*4 == i {
		fmt.Println("No duplicate ids were found")
	}
}

func mockHttpRequest(httpAddr string) string {
	httpIpAndPort := httpAddr[7:]

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/get-unique-id?inventory_id=%s", httpAddr, *inventoryFlag), nil)
	if err != nil {
		log.Printf("failed to build http request (%s): %v\n", httpIpAndPort, err)
		return ""
	}
	req.Header.Set("X-User-ID", *userFlag)

	response, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("failed when getting id from http (%s): %v\n", httpIpAndPort, err)
		return ""
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		log.Printf("error reading http response body (%s): %v\n", httpIpAndPort, err)
		return ""
	}

	if response.StatusCode != http.StatusOK {
		log.Printf("http (%s) answered %d: %s\n", httpIpAndPort, response.StatusCode, body)
		return ""
	}

	fmt.Printf("unique id from http (%s): %s\n", httpIpAndPort, string(body))

	return string(body)
}

func mockGrpcRequest(grpcClient pb.GeneratorClient, grpcAddr string) string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	request := pb.IssueRequest{UserID: *userFlag, InventoryID: *inventoryFlag}

	response, err := grpcClient.Issue(ctx, request.Struct())
	if err != nil {
		log.Printf("failed when getting id from gprc (%s): %v\n", grpcAddr, err)
		return ""
	}

	reply := pb.ParseIssueReply(response)
	fmt.Printf("unique id from grpc (%s): %s\n", grpcAddr, reply.ID)

	return reply.ID
}

func initGrpcClient(grpcAddr string) (pb.GeneratorClient, *grpc.ClientConn) {
	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect to grpc server (%s): %v\n", grpcAddr, err)
	}

	grpcClient := pb.NewGeneratorClient(conn)

	return grpcClient, conn
}
