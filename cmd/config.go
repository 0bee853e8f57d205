package cmd

const DESCRIPTION = `
convo is the command line client for the Convo messaging service.
It keeps your session in an encrypted cookie store, so a login
survives restarts until the server says otherwise.
`

const (
	StatusDescription = `The status command checks whether the stored session is
still usable. Without a session cookie no request is made;
otherwise the server is asked once. A rejected session is
cleared, an unreachable server leaves it in place.

Example:
        convo status

`
	LoginDescription = `The login command signs in and stores the session cookie
the server sets. The device model, OS and id are sent along.

Example:
        convo login -u alice -p secret

`
	LogoutDescription = `The logout command removes the stored cookies. With
--session-only only the session cookie is removed.

Example:
        convo logout

`
	OtpDescription = `The otp command sends and verifies one-time passwords for
a phone number.

Example:
        convo otp send +15550100
        convo otp verify +15550100 123456

`
	RegisterDescription = `The register command creates a new account.

Example:
        convo register -u alice -e alice@example.com --phone +15550100 -p secret

`
	PingDescription = `The ping command calls the server's test endpoint and
prints its answer. Stored cookies are sent along.

Example:
        convo ping

`
	CookiesDescription = `The cookies command inspects and manages the cookie store.
Cookie values are never printed.

Example:
        convo cookies list
        convo cookies clear
        convo cookies import ~/.mozilla/firefox/xyz.default/cookies.sqlite

`
	CookiesImportDescription = `The import subcommand copies the cookies of one host from a
Firefox or Chrome cookie database, or from a Netscape
cookies.txt file, into the store. The host defaults to the
API host.

Example:
        convo cookies import --host api.convo.app cookies.txt

`
)
