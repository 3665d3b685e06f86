package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	common "github.com/entoun8/alshami-store/pkg/common/domain"
	"github.com/entoun8/alshami-store/pkg/identity/domain/model"
)

// CartMerger folds an anonymous cart into the signing-in user's
// identity. Implemented by the cart service.
type CartMerger interface {
	MergeOnSignIn(sessionCartID string, userID uuid.UUID) error
}

type IdentityService interface {
	// SignIn verifies the bearer token, provisions a profile for a new
	// email, and best-effort merges the anonymous cart.
	SignIn(token, sessionCartID string) (*model.UserProfile, error)
	// Resolve maps a bearer token to the caller's profile, provisioning
	// on first contact with a new email.
	Resolve(token string) (*model.UserProfile, error)
	GetProfile(userID uuid.UUID) (*model.UserProfile, error)
	UpdateAddress(userID uuid.UUID, address model.ShippingAddress) error
	SetPaymentMethod(userID uuid.UUID, method string) error
}

func NewIdentityService(repo model.UserRepository, verifier model.TokenVerifier, carts CartMerger, dispatcher common.EventDispatcher) IdentityService {
	return &identityService{repo: repo, verifier: verifier, carts: carts, dispatcher: dispatcher}
}

type identityService struct {
	repo       model.UserRepository
	verifier   model.TokenVerifier
	carts      CartMerger
	dispatcher common.EventDispatcher
}

func (s *identityService) SignIn(token, sessionCartID string) (*model.UserProfile, error) {
	subject, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	profile, err := s.ensureProfile(subject)
	if err != nil {
		return nil, err
	}

	// The merge is best-effort: a failure must not fail the sign-in.
	if sessionCartID != "" {
		if err := s.carts.MergeOnSignIn(sessionCartID, profile.ID); err != nil {
			log.WithError(err).WithField("userId", profile.ID).Warn("cart merge failed on sign-in")
		}
	}

	return profile, nil
}

func (s *identityService) Resolve(token string) (*model.UserProfile, error) {
	subject, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.ensureProfile(subject)
}

func (s *identityService) GetProfile(userID uuid.UUID) (*model.UserProfile, error) {
	return s.repo.Find(userID)
}

func (s *identityService) UpdateAddress(userID uuid.UUID, address model.ShippingAddress) error {
	if err := address.Validate(); err != nil {
		return err
	}

	user, err := s.repo.Find(userID)
	if err != nil {
		return err
	}

	user.Address = &address
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(user); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ShippingAddressUpdated{UserID: userID})
	return nil
}

func (s *identityService) SetPaymentMethod(userID uuid.UUID, method string) error {
	if !model.IsRecognisedPaymentMethod(method) {
		return model.ErrUnknownPaymentMethod
	}

	user, err := s.repo.Find(userID)
	if err != nil {
		return err
	}

	user.PaymentMethod = method
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(user); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.PaymentMethodSelected{UserID: userID, Method: method})
	return nil
}

func (s *identityService) ensureProfile(subject *model.Subject) (*model.UserProfile, error) {
	if profile, err := s.repo.FindByEmail(subject.Email); err == nil {
		return profile, nil
	}

	userID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	fullName := subject.FullName
	if fullName == "" {
		fullName = strings.SplitN(subject.Email, "@", 2)[0]
	}

	now := time.Now().UTC()
	profile := &model.UserProfile{
		ID:        userID,
		Email:     subject.Email,
		FullName:  fullName,
		Image:     subject.Image,
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(profile); err != nil {
		// Another request may have provisioned the same email first.
		if existing, findErr := s.repo.FindByEmail(subject.Email); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.UserProfileCreated{UserID: userID, Email: subject.Email})
	return profile, nil
}
