package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/visitech/portfolio-api/internal/common"
)

var errBadGateway = errors.New("502 bad gateway")

// 基本用法：成功后立即返回
func ExampleDo() {
	err := common.Do(context.Background(), func() error {
		return nil
	})
	fmt.Println(err)
	// Output: <nil>
}

// 只重试瞬时错误，并在每次重试前打印日志
func ExampleDo_retryIf() {
	attempts := 0
	err := common.Do(context.Background(),
		func() error {
			attempts++
			if attempts < 3 {
				return errBadGateway
			}
			return nil
		},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Millisecond),
		common.WithRetryIf(func(err error) bool { return errors.Is(err, errBadGateway) }),
		common.WithOnRetry(func(attempt int, err error) {
			fmt.Printf("retry %d: %v\n", attempt, err)
		}),
	)
	fmt.Println(attempts, err)
	// Output:
	// retry 1: 502 bad gateway
	// retry 2: 502 bad gateway
	// 3 <nil>
}

// 永久错误不会重试，原样返回
func ExampleDo_permanent() {
	notFound := errors.New("404 not found")
	attempts := 0
	err := common.Do(context.Background(),
		func() error {
			attempts++
			return notFound
		},
		common.WithRetryIf(func(err error) bool { return errors.Is(err, errBadGateway) }),
	)
	fmt.Println(attempts, err)
	// Output: 1 404 not found
}
