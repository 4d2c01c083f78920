package cognito

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"pettracker/app/config"
	"pettracker/app/domain"
)

// userPoolAPI is the subset of the user pool client the provider uses.
type userPoolAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cognitoidentityprovider.RespondToAuthChallengeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.RespondToAuthChallengeOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, params *cognitoidentityprovider.ResendConfirmationCodeInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ResendConfirmationCodeOutput, error)
	ForgotPassword(ctx context.Context, params *cognitoidentityprovider.ForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cognitoidentityprovider.ConfirmForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmForgotPasswordOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// Provider adapts the user pool API to port.IdentityProvider. Raw
// provider failures are classified into domain.AuthError at this
// boundary; the session manager above sees only tagged errors.
type Provider struct {
	api      userPoolAPI
	clientID string
	logger   *slog.Logger
}

// NewProvider creates a provider over the configured user pool.
func NewProvider(cfg *config.Config, api userPoolAPI, logger *slog.Logger) *Provider {
	return &Provider{
		api:      api,
		clientID: cfg.UserPoolClientID,
		logger:   logger.With("component", "identity_provider"),
	}
}

// Authenticate starts a password authentication challenge.
func (p *Provider) Authenticate(ctx context.Context, username, password string) (*domain.AuthOutcome, error) {
	out, err := p.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, classifySignInError(err)
	}

	if out.ChallengeName != "" {
		p.logger.Info("authentication challenge issued",
			"challenge", string(out.ChallengeName))

		return &domain.AuthOutcome{
			Challenge: &domain.MFAChallenge{
				Username:          username,
				ChallengeName:     string(out.ChallengeName),
				ContinuationToken: aws.ToString(out.Session),
				Delivery: domain.CodeDelivery{
					Destination: out.ChallengeParameters["CODE_DELIVERY_DESTINATION"],
					Medium:      out.ChallengeParameters["CODE_DELIVERY_DELIVERY_MEDIUM"],
				},
			},
		}, nil
	}

	session, err := sessionFromResult(out.AuthenticationResult)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeUnknown, err)
	}
	return &domain.AuthOutcome{Session: session}, nil
}

// RespondToMFAChallenge submits the one-time code for a pending
// challenge.
func (p *Provider) RespondToMFAChallenge(ctx context.Context, challenge *domain.MFAChallenge, code string) (*domain.Session, error) {
	out, err := p.api.RespondToAuthChallenge(ctx, &cognitoidentityprovider.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameType(challenge.ChallengeName),
		ClientId:      aws.String(p.clientID),
		Session:       aws.String(challenge.ContinuationToken),
		ChallengeResponses: map[string]string{
			"USERNAME":     challenge.Username,
			"SMS_MFA_CODE": code,
		},
	})
	if err != nil {
		return nil, classifySignInError(err)
	}

	session, err := sessionFromResult(out.AuthenticationResult)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeUnknown, err)
	}
	return session, nil
}

// RefreshSession trades a refresh token for a new token triple. The
// provider omits the refresh token from the result; the old one stays
// valid and is carried over.
func (p *Provider) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	out, err := p.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, classifySignInError(err)
	}

	result := out.AuthenticationResult
	if result == nil {
		return nil, domain.NewAuthError(domain.ErrCodeUnknown, fmt.Errorf("refresh returned no tokens"))
	}

	session, err := domain.NewSession(
		aws.ToString(result.IdToken),
		aws.ToString(result.AccessToken),
		refreshToken,
	)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeUnknown, err)
	}
	return session, nil
}

// SignUp registers a new identity with the optional email and phone
// attributes the form collected.
func (p *Provider) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResult, error) {
	var attrs []types.AttributeType
	if req.Email != "" {
		attrs = append(attrs, types.AttributeType{
			Name:  aws.String("email"),
			Value: aws.String(req.Email),
		})
	}
	if req.Phone != "" {
		attrs = append(attrs, types.AttributeType{
			Name:  aws.String("phone_number"),
			Value: aws.String(req.Phone),
		})
	}

	out, err := p.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(p.clientID),
		Username:       aws.String(req.Username),
		Password:       aws.String(req.Password),
		UserAttributes: attrs,
	})
	if err != nil {
		return nil, classifyRegistrationError(err)
	}

	return &domain.SignUpResult{
		UserConfirmed: out.UserConfirmed,
		Delivery:      deliveryFromDetails(out.CodeDeliveryDetails),
	}, nil
}

// ConfirmSignUp submits a registration verification code. Errors are
// surfaced verbatim as the contract requires.
func (p *Provider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.api.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return fmt.Errorf("confirm registration: %w", err)
	}
	return nil
}

// ResendConfirmationCode requests a fresh registration code.
func (p *Provider) ResendConfirmationCode(ctx context.Context, username string) error {
	_, err := p.api.ResendConfirmationCode(ctx, &cognitoidentityprovider.ResendConfirmationCodeInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return fmt.Errorf("resend confirmation code: %w", err)
	}
	return nil
}

// ForgotPassword initiates the provider's reset challenge.
func (p *Provider) ForgotPassword(ctx context.Context, username string) (*domain.CodeDelivery, error) {
	out, err := p.api.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(username),
	})
	if err != nil {
		return nil, classifyResetError(err)
	}

	delivery := deliveryFromDetails(out.CodeDeliveryDetails)
	return &delivery, nil
}

// ConfirmForgotPassword completes the reset challenge with the code and
// the new password.
func (p *Provider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := p.api.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return classifyResetError(err)
	}
	return nil
}

// SignOut invalidates every session issued for the access token.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	_, err := p.api.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return classifySignInError(err)
	}
	return nil
}

func sessionFromResult(result *types.AuthenticationResultType) (*domain.Session, error) {
	if result == nil {
		return nil, fmt.Errorf("authentication returned no tokens")
	}
	return domain.NewSession(
		aws.ToString(result.IdToken),
		aws.ToString(result.AccessToken),
		aws.ToString(result.RefreshToken),
	)
}

func deliveryFromDetails(details *types.CodeDeliveryDetailsType) domain.CodeDelivery {
	if details == nil {
		return domain.CodeDelivery{}
	}
	return domain.CodeDelivery{
		Destination: aws.ToString(details.Destination),
		Medium:      string(details.DeliveryMedium),
	}
}
