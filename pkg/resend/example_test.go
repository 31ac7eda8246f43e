package resend_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/resend-community/go-client/pkg/request"
	"github.com/resend-community/go-client/pkg/resend"
)

func ExampleNewAPI() {
	ctx := context.TODO()

	// Create API
	api := resend.NewAPI("<my-api-key>")

	// Send request
	result, err := api.Emails.SendRequest(&resend.SendEmailRequest{
		Subject: "Hello",
		From:    "from@domain.com",
		To:      []string{"to@domain.com"},
		Text:    "Hello World",
	}).Send(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%#v", result)
}

func Example_outcome() {
	ctx := context.TODO()
	api := resend.NewAPI("<my-api-key>")

	domain, err := api.Domains.GetRequest("<domain-id>").Send(ctx)
	switch request.OutcomeOf(err) {
	case request.OutcomeSuccess:
		fmt.Println(domain.Status)
	case request.OutcomeAPIError:
		var apiErr *resend.APIError
		errors.As(err, &apiErr)
		fmt.Println(apiErr.ErrorName(), apiErr.ErrorUserMessage())
	case request.OutcomeParseError:
		var parseErr *request.ParseError
		errors.As(err, &parseErr)
		fmt.Println("unexpected response:", parseErr.Body)
	default:
		log.Fatal(err)
	}
}
