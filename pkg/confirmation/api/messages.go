package api

const (
	msgLinkNotWorking   = "Whoops, that link doesn't seem to be working anymore!"
	msgResent           = "Don't worry, we have sent you a new email. Please check your email account and use the new confirmation key."
	msgMissingSignedIn  = "Whoops, that link doesn't work anymore! Re-send the confirmation email by logging in with the corresponding account."
	msgMissingAnonymous = "Whoops, that link doesn't seem to exist! Please login and re-send the confirmation email."
	msgConfirmedOwn     = "Thanks a lot, you've successfully confirmed your email address. Have fun!"
	msgConfirmedOther   = "Thanks a lot! You successfully confirmed the email address."
	msgNotYourAccount   = "The email you confirmed does not belong to the account you are signed in with."
)
