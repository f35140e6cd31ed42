// Package notification delivers templated notices over email.
//
// A NotificationManager keeps a registry of notice templates per delivery
// system and the Notifier that serves each system. Sending a notice renders
// the registered template with the notice data and hands the result to the
// notifier for every system the notice type has a template for.
//
// Two email notifiers are provided: EmailNotifier speaks SMTP through
// go-mail, SendGridNotifier uses the SendGrid HTTP API. MockNotifier records
// what it was asked to send and is meant for tests.
//
//	nm, err := notification.NewNotificationManagerWithOptions(
//	    notification.WithSMTP(notification.SMTPConfig{
//	        Host: "localhost",
//	        Port: 1025,
//	        From: "noreply@example.com",
//	    }),
//	    notification.WithDefaultTemplates(),
//	)
//	if err != nil {
//	    return err
//	}
//
//	err = nm.Send(ctx, notification.EmailConfirmationNotice, notification.NotificationData{
//	    To: "user@example.com",
//	    Data: map[string]string{
//	        "ActivateURL": "http://example.com/confirm/abc/",
//	        "SiteName":    "Example",
//	        "Email":       "user@example.com",
//	    },
//	})
//
// Templates use text/template for the plain text body and html/template for
// the HTML body. Data keys are referenced as {{.Key}}.
package notification
