package queue

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/pkg/errors"
)

// SQSAdaptor is used to send messages to the queue
type SQSAdaptor struct {
	Client   sqsiface.SQSAPI
	QueueURL string
}

// NewSQSAdaptor returns a new sqs adaptor object
func NewSQSAdaptor(awsConfig *aws.Config, queueURL string) *SQSAdaptor {
	return &SQSAdaptor{sqs.New(session.New(), awsConfig), queueURL}
}

// SendResult adds a result to the queue
func (adaptor *SQSAdaptor) SendResult(envelope Envelope) error {
	str, err := jsonFromEnvelope(envelope)
	if err != nil {
		return err
	}
	params := &sqs.SendMessageInput{
		MessageBody: aws.String(str),
		QueueUrl:    aws.String(adaptor.QueueURL),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"run-id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(envelope.RunID),
			},
		},
	}
	_, err = adaptor.Client.SendMessage(params)
	return errors.Wrap(err, "sending result to sqs")
}
